// Package config assembles runtime settings for the evtracker CLI.
//
// Sources are applied in order, later ones winning:
//
//  1. LoadDefaults
//  2. a JSON file (LoadOptions.ConfigFile)
//  3. a .env file (LoadOptions.EnvFile), which only fills variables not
//     already present in the environment
//  4. EVTRACKER_* environment variables
//
// Command-line flags are applied on top by the cli package.
package config
