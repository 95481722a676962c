package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const export = "Rapsodo\nExported,2024-05-02\nPlayer Name,Taro Yamada\n\n" +
	"Date,Pitch Type,Velocity,Total Spin,VB (trajectory),HB (trajectory)\n" +
	"2024-05-01,Fastball,145.2,2200,45.1,-12.3\n"

func TestRun(t *testing.T) {
	Convey("Given the ingest command", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		var stdout, stderr bytes.Buffer

		cfgPath := filepath.Join(dir, "config.yaml")
		So(os.WriteFile(cfgPath, []byte("store_driver: memory\n"), 0o600), ShouldBeNil)

		good := filepath.Join(dir, "0000001_day1.csv")
		So(os.WriteFile(good, []byte(export), 0o600), ShouldBeNil)
		bad := filepath.Join(dir, "0000002_bad.csv")
		So(os.WriteFile(bad, []byte("no header here\n"), 0o600), ShouldBeNil)

		Convey("When asked for help", func() {
			So(run(ctx, []string{"-help"}, &stdout, &stderr), ShouldEqual, 0)
			So(stdout.String(), ShouldContainSubstring, "Usage:")
		})

		Convey("When no files are given", func() {
			So(run(ctx, nil, &stdout, &stderr), ShouldEqual, 2)
		})

		Convey("When an unknown flag is given", func() {
			So(run(ctx, []string{"-nope"}, &stdout, &stderr), ShouldEqual, 2)
		})

		Convey("When every file parses", func() {
			code := run(ctx, []string{"-config", cfgPath, good}, &stdout, &stderr)

			Convey("Then it exits zero with one OK line", func() {
				So(code, ShouldEqual, 0)
				So(stdout.String(), ShouldStartWith, "OK   0000001_day1.csv: subject=0000001_Taro_Yamada")
			})
		})

		Convey("When one file fails", func() {
			code := run(ctx, []string{"-config", cfgPath, good, bad}, &stdout, &stderr)

			Convey("Then the others are still ingested and the exit status is 1", func() {
				So(code, ShouldEqual, 1)
				So(stdout.String(), ShouldContainSubstring, "OK   0000001_day1.csv")
				So(stdout.String(), ShouldContainSubstring, "FAIL 0000002_bad.csv")
				So(stderr.String(), ShouldNotContainSubstring, "ingest failed")
			})
		})
	})
}
