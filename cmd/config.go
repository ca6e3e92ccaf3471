package cmd

import "time"

const (
	// DEF_METER_WIDTH is the width of the volume meter bars.
	DEF_METER_WIDTH = 40
	// DEF_CACHE_TTL is how long decoded samples stay in memory after use.
	DEF_CACHE_TTL = 10 * time.Minute
	// RULE_WIDTH is the width of the stage headers printed by check.
	RULE_WIDTH = 48
)

const DESCRIPTION = `
Slumber plays layered ambient sounds to help you fall asleep.
Each stage of a sounds directory runs its own small script that
starts, fades and cross-fades samples on a shared mixer, all
driven by one cooperative event loop.
`

const (
	PlayDescription = `The play command starts every stage found in the sounds
directory and keeps them cycling until interrupted or until
the stop time is reached.

A sounds directory holds one subdirectory per stage. Each stage
contains a SLUMBER script and one or more .wav samples:

        sounds/
          0-rain/SLUMBER
          0-rain/drizzle.wav
          1-waves/SLUMBER
          1-waves/surf.wav

Script commands, one per line (durations in seconds):
        play [sec]          start a new sample, fading it in
        fadeout <sec>       fade the stage to silence
        wait <sec>          do nothing for a while
        set_volume <0..1>   set the stage volume
        swap <sec>          cross-fade to a new sample
        ramp <sec> <0..1>   slide the volume to a new level

Example:
        slumber --sounds ~/sleep --stop-after 90
					OR
        slumber play -s ~/sleep --stop-at "30 6 * * *"

`
	CheckDescription = `The check command loads every stage of the sounds directory,
validates its script and prints what it found, without playing
anything.

Example:
        slumber check --sounds ~/sleep

`
)
