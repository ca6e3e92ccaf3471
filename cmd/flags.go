package cmd

import "github.com/urfave/cli"

var (
	soundsDir  string
	debug      bool
	stopAfter  float64
	stopAt     string
	headless   bool
	showMeter  bool
	logFile    string
	soundsFlag = cli.StringFlag{
		Name:        "sounds, s",
		Usage:       "directory holding one subdirectory per stage",
		EnvVar:      "SLUMBER_SOUNDS",
		Destination: &soundsDir,
	}
	debugFlag = cli.BoolFlag{
		Name:        "debug, d",
		Usage:       "enable debug logging (SIGUSR1 then dumps the player state)",
		EnvVar:      "SLUMBER_DEBUG",
		Destination: &debug,
	}
)

var playFlags = []cli.Flag{
	soundsFlag,
	debugFlag,
	cli.Float64Flag{
		Name:        "stop-after",
		Usage:       "stop playback after `MINUTES`",
		EnvVar:      "SLUMBER_STOP_AFTER",
		Destination: &stopAfter,
	},
	cli.StringFlag{
		Name:        "stop-at",
		Usage:       "stop playback the next time the cron `EXPR` fires (within 24h)",
		EnvVar:      "SLUMBER_STOP_AT",
		Destination: &stopAt,
	},
	cli.BoolFlag{
		Name:        "headless",
		Usage:       "run the stages without audio output",
		EnvVar:      "SLUMBER_HEADLESS",
		Destination: &headless,
	},
	cli.BoolFlag{
		Name:        "meter, m",
		Usage:       "show a volume meter for every channel",
		Destination: &showMeter,
	},
	cli.StringFlag{
		Name:        "log-file, l",
		Usage:       "also write logs to `FILE`",
		EnvVar:      "SLUMBER_LOG_FILE",
		Destination: &logFile,
	},
}

var checkFlags = []cli.Flag{
	soundsFlag,
	debugFlag,
}
