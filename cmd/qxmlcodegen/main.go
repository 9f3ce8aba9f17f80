// Command qxmlcodegen turns an XML Schema document into a generated Go
// reader package: a declarations file and a reader-functions file, whose
// package name comes from the qxg:config class override (or the input
// file name).
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skycoder42/qxmlcodegen/qxgen"
	"github.com/skycoder42/qxmlcodegen/qxsd"
)

var (
	debug        bool
	skipVerify   bool
	strictVerify bool
	cfgFile      string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qxmlcodegen <xsd> <hdr> <src>",
		Short: "Generate a Go XML reader package from an XSD schema",
		Args:  cobra.RangeArgs(1, 3),
		RunE:  runGenerate,
	}
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "use debug level logging")
	cmd.PersistentFlags().BoolVar(&skipVerify, "skip-verify", false, "never run the W3C meta-schema pre-pass")
	cmd.PersistentFlags().BoolVar(&strictVerify, "verify", false, "fail generation if the meta-schema pre-pass fails; with a single <xsd> argument, only verify")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "tool config file (default $HOME/.qxmlcodegen.yaml)")
	cobra.OnInitialize(initConfig)
	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".qxmlcodegen")
		}
	}
	viper.SetEnvPrefix("QXMLCODEGEN")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log := newLogger(debug)

	mode := qxgen.VerifyWarn
	switch {
	case skipVerify:
		mode = qxgen.VerifySkip
	case strictVerify:
		mode = qxgen.VerifyStrict
	}

	opts := qxgen.Options{
		Verify:        mode,
		MetaSchemaURL: viper.GetString("meta-schema-url"),
		HTTPClient:    http.DefaultClient,
		Logf:          logf(log),
	}
	if opts.MetaSchemaURL == "" {
		opts.MetaSchemaURL = qxsd.DefaultMetaSchemaURL
	}

	if len(args) == 1 {
		if mode != qxgen.VerifyStrict {
			return fmt.Errorf("qxmlcodegen: a single <xsd> argument only makes sense with --verify")
		}
		raw, err := os.ReadFile(args[0])
		if err != nil {
			log.Error().Err(err).Msg("reading schema")
			return err
		}
		v := qxsd.NewMetaVerifier(opts.MetaSchemaURL, opts.HTTPClient)
		if err := v.Verify(cmd.Context(), raw); err != nil {
			log.Error().Err(err).Msg("meta-schema verification failed")
			return err
		}
		log.Info().Msg("schema verified")
		return nil
	}

	if len(args) != 3 {
		return fmt.Errorf("qxmlcodegen: expected <xsd> <hdr> <src>, got %d argument(s)", len(args))
	}

	if err := qxgen.Generate(args[0], args[1], args[2], opts); err != nil {
		log.Error().Err(err).Msg("generation failed")
		return err
	}
	return nil
}
