package config

import "os"

// ApplyEnv applies UWB_* environment variables to s, skipping any whose flag
// is in changed.
func ApplyEnv(s *Settings, changed map[string]bool) error {
	set := newConfigSetter(changed)

	set.setStringFromEnv("port", os.Getenv("UWB_PORT"), &s.Port)
	if err := set.setIntFromEnv("baud", os.Getenv("UWB_BAUD_RATE"), &s.BaudRate); err != nil {
		return err
	}
	set.setStringFromEnv("algorithm", os.Getenv("UWB_ALGORITHM"), &s.Algorithm)
	set.setStringFromEnv("dimension", os.Getenv("UWB_DIMENSION"), &s.Dimension)
	if err := set.setIntFromEnv("height", os.Getenv("UWB_HEIGHT_MM"), &s.HeightMM); err != nil {
		return err
	}
	if err := set.setBoolFromEnv("height-as-z", os.Getenv("UWB_HEIGHT_AS_Z"), &s.HeightAsZ); err != nil {
		return err
	}
	if err := set.setBoolFromEnv("persist", os.Getenv("UWB_PERSIST"), &s.Persist); err != nil {
		return err
	}
	if err := set.setDurationFromEnv("interval", os.Getenv("UWB_INTERVAL"), &s.Interval); err != nil {
		return err
	}
	if err := set.setIntFromEnv("cycles", os.Getenv("UWB_CYCLES"), &s.Cycles); err != nil {
		return err
	}
	set.setStringFromEnv("listen", os.Getenv("UWB_LISTEN"), &s.Listen)
	set.setStringFromEnv("log-level", os.Getenv("UWB_LOG_LEVEL"), &s.LogLevel)
	return set.setBoolFromEnv("simulate", os.Getenv("UWB_SIMULATE"), &s.Simulate)
}
