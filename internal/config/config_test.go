package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/cropyield/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.ModelBackend, convey.ShouldEqual, config.BackendFile)
			convey.So(cfg.ModelPath, convey.ShouldEqual, "model/yield_pipeline.json")
			convey.So(cfg.ModelTimeout(), convey.ShouldEqual, 2*time.Second)
			convey.So(cfg.WarmUp, convey.ShouldBeTrue)
			convey.So(cfg.BatchMaxRows, convey.ShouldEqual, 1000)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one invalid setting each", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":           func(c *config.Config) { c.Addr = "" },
			"unknown log format":   func(c *config.Config) { c.LogFormat = "xml" },
			"unknown backend":      func(c *config.Config) { c.ModelBackend = "pickle" },
			"file without path":    func(c *config.Config) { c.ModelPath = "" },
			"http without url":     func(c *config.Config) { c.ModelBackend = config.BackendHTTP },
			"zero model timeout":   func(c *config.Config) { c.ModelTimeoutMS = 0 },
			"negative batch limit": func(c *config.Config) { c.BatchMaxRows = -1 },
		}

		convey.Convey("Then each is rejected with ErrInvalidConfig", func() {
			for _, mutate := range cases {
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			}
		})

		convey.Convey("Then the http backend is valid once it has a URL", func() {
			cfg := config.New()
			cfg.ModelBackend = config.BackendHTTP
			cfg.ModelURL = "http://localhost:8501"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
