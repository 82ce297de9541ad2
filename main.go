package main

import (
	"os"
)

func main() {
	logger, closeLog := newLogger(os.Getenv(logLevelEnv))
	defer closeLog()

	logger.Info().Str("version", version).Msg("starting")

	renderer, err := NewIconRenderer()
	if err != nil {
		logger.Error().Err(err).Msg("icon renderer unavailable")
		return
	}

	values, startup := newSystemPreferences()
	prefs := NewPreferenceStore(values, startup, logger)
	adapters := NewAdapterLookup(newSystemInterfaces(), logger)

	controller := NewTrayController(systrayHost{}, prefs, adapters, renderer, newProcessRelauncher(logger), logger)
	runTray(controller)
}
