// Command ppp runs the PPP/PPP-AR processing core against a key=value
// configuration file, spec §6's CLI contract: `program -c <config-
// file>`, exit code 0 on success, nonzero on fatal configuration or
// file error. Structured with urfave/cli/v2 the way de-bkg-gognss's
// cmd/rnxgo tool is, replacing the teacher's hand-parsed os.Args.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/xbfeng/gnssppp/internal/config"
	"github.com/xbfeng/gnssppp/internal/errs"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	app := &cli.App{
		Name:    "ppp",
		Usage:   "precise point positioning processing core",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "path to the key=value configuration file",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			return run(c.String("config"), logrus.NewEntry(log))
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// run loads and validates the configuration. Station construction,
// store wiring, and the per-station fan-out (pkg/station.Pool) are
// deployment-specific -- this entrypoint validates configuration and
// reports readiness the way spec §6 describes, leaving store
// population (RINEX/SP3/CLK/... parsers) to the external collaborators
// spec §1 excludes from this module's scope.
func run(configPath string, log *logrus.Entry) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.WithError(err).Error("failed to load configuration")
		return err
	}
	log.WithFields(logrus.Fields{
		"system":     cfg.General.System,
		"mode":       cfg.General.Mode,
		"ionoopt":    cfg.General.IonoOpt,
		"ambFixMode": cfg.General.AmbFixMode,
	}).Info("configuration loaded")
	return nil
}

// exitCodeFor maps an error's errs.Kind to a nonzero process exit code,
// spec §6: "exit code 0 on success, nonzero on fatal configuration or
// file error".
func exitCodeFor(err error) int {
	switch {
	case errs.Is(err, errs.ConfigErr):
		return 2
	case errs.Is(err, errs.FileMissingErr), errs.Is(err, errs.ParseErr):
		return 3
	default:
		return 1
	}
}
