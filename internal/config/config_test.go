package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/tmaxmax/go-datastar/internal/config"
)

func setenv(key, value string) {
	prev, had := os.LookupEnv(key)
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(func() {
		if had {
			_ = os.Setenv(key, prev)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

var _ = Describe("Config", func() {
	Describe("Load", func() {
		It("returns the defaults without a config file", func() {
			v, err := config.InitViper("")
			Expect(err).NotTo(HaveOccurred())

			cfg, err := config.Load(v)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(Equal(config.NewDefaultConfig()))
		})

		It("reads a config file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "datastar.toml")
			data := `[serve]
listen = ":9090"
engine = "fiber"
interval = "250ms"

[tail]
url = "http://example.com/stream"
max_retries = 4
`
			Expect(os.WriteFile(path, []byte(data), 0o600)).To(Succeed())

			v, err := config.InitViper(path)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := config.Load(v)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Serve.Listen).To(Equal(":9090"))
			Expect(cfg.Serve.Engine).To(Equal(config.EngineFiber))
			Expect(cfg.Serve.Interval).To(Equal(250 * time.Millisecond))
			Expect(cfg.Tail.URL).To(Equal("http://example.com/stream"))
			Expect(cfg.Tail.MaxRetries).To(Equal(4))
			Expect(cfg.Log.Pretty).To(BeTrue())
		})

		It("fails on a missing config file", func() {
			_, err := config.InitViper(filepath.Join(GinkgoT().TempDir(), "missing.toml"))
			Expect(err).To(HaveOccurred())
		})

		It("reads environment variables", func() {
			setenv("DATASTAR_SERVE_ENGINE", "fiber")
			setenv("DATASTAR_LOG_DEBUG", "true")

			v, err := config.InitViper("")
			Expect(err).NotTo(HaveOccurred())

			cfg, err := config.Load(v)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Serve.Engine).To(Equal(config.EngineFiber))
			Expect(cfg.Log.Debug).To(BeTrue())
		})

		It("rejects unknown engines", func() {
			setenv("DATASTAR_SERVE_ENGINE", "gin")

			v, err := config.InitViper("")
			Expect(err).NotTo(HaveOccurred())

			_, err = config.Load(v)
			Expect(err).To(MatchError(config.ErrUnknownEngine))
		})
	})

	Describe("Validate", func() {
		It("rejects an empty listen address", func() {
			cfg := config.NewDefaultConfig()
			cfg.Serve.Listen = ""
			Expect(cfg.Validate()).To(MatchError(config.ErrInvalidListen))
		})

		It("rejects a non-positive interval", func() {
			cfg := config.NewDefaultConfig()
			cfg.Serve.Interval = 0
			Expect(cfg.Validate()).To(MatchError(config.ErrInvalidTick))
		})
	})

	Describe("Flags", func() {
		It("registers flags with their defaults", func() {
			cmd := &cobra.Command{Use: "serve"}
			config.AddStringFlag(cmd, config.Flags, config.FlagListen)
			config.AddDurationFlag(cmd, config.Flags, config.FlagInterval)
			config.AddIntFlag(cmd, config.Flags, config.FlagMaxRetries)
			config.AddStringFlag(cmd, config.Flags, "unknown")

			Expect(cmd.Flags().Lookup("listen").DefValue).To(Equal(":8080"))
			Expect(cmd.Flags().Lookup("listen").Shorthand).To(Equal("l"))
			Expect(cmd.Flags().Lookup("interval").DefValue).To(Equal("1s"))
			Expect(cmd.Flags().Lookup("max-retries").DefValue).To(Equal("-1"))
			Expect(cmd.Flags().Lookup("unknown")).To(BeNil())
		})

		It("binds flags over env and defaults", func() {
			setenv("DATASTAR_SERVE_LISTEN", ":7070")

			cmd := &cobra.Command{Use: "serve"}
			config.AddStringFlag(cmd, config.Flags, config.FlagListen)
			config.AddStringFlag(cmd, config.Flags, config.FlagEngine)
			Expect(cmd.Flags().Parse([]string{"--engine", "fiber"})).To(Succeed())

			v, err := config.InitViper("")
			Expect(err).NotTo(HaveOccurred())
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagListen, config.FlagEngine})

			cfg, err := config.Load(v)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Serve.Engine).To(Equal(config.EngineFiber))
			Expect(cfg.Serve.Listen).To(Equal(":7070"))
		})
	})
})
