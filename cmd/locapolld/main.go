package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"loca2-asset-tracker/internal/tracker"
)

func main() {
	var err error
	var configFile string
	var config tracker.Config

	rootCmd := &cobra.Command{
		Use:   "locapolld",
		Short: "Poll the Loca asset tracking API and publish device snapshots",
		// Main Entry Point
		Run: func(c *cobra.Command, args []string) {
			// Init
			t, err := tracker.New(config)
			if err != nil {
				log.Fatalf("Failed on init: %v", err)
			}

			err = t.Run()
			if err != nil {
				log.Fatalf("Failed on start: %v", err)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.json", "Path to configuration")

	// Default Values
	viper.SetDefault("loca.endpoint", "https://www.mijnloca.nl")
	viper.SetDefault("loca.timeout", 10)
	viper.SetDefault("poll.interval", 30)
	viper.SetDefault("poll.failure_threshold", 3)

	// Read Configuration File Before Start
	cobra.OnInitialize(func() {
		// Credentials may come from a .env file instead of the config file
		_ = godotenv.Load()

		_, err := os.Stat(configFile)
		if os.IsNotExist(err) {
			envConfFile := os.Getenv("CONFIG_FILE")
			if envConfFile != "" {
				_, err := os.Stat(envConfFile)
				if os.IsNotExist(err) {
					log.Fatalf("Config file %s does not exist!", envConfFile)
				}

				configFile = envConfFile
			} else {
				log.Fatalf("Config file %s does not exist!", configFile)
			}
		}

		viper.SetConfigFile(configFile)
		viper.SetConfigType("json")
		err = viper.ReadInConfig()
		if err != nil {
			log.Fatalf("Failed to read config: %v", err)
		}

		err = viper.Unmarshal(&config)
		if err != nil {
			log.Fatalf("Failed to parse config: %v", err)
		}

		if v := os.Getenv("LOCA_ACCOUNT"); v != "" {
			config.Loca.Account = v
		}
		if v := os.Getenv("LOCA_PASSWORD"); v != "" {
			config.Loca.Password = v
		}

		log.Printf("Loaded config file: %s", configFile)
	})

	// Launch (cobra.OnInitialize -> rootCmd.Run)
	err = rootCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}
