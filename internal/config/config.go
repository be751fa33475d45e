package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`

	// Vote-confirmation hysteresis bounds, one (upper, lower) pair per
	// classification kind. Upper must be greater than lower.
	VoteAlikeUpper int `mapstructure:"VOTE_ALIKE_UPPERBOUND"`
	VoteAlikeLower int `mapstructure:"VOTE_ALIKE_LOWERBOUND"`

	VoteTagUpper int `mapstructure:"VOTE_TAG_UPPERBOUND"`
	VoteTagLower int `mapstructure:"VOTE_TAG_LOWERBOUND"`

	VoteRecommendUpper int `mapstructure:"VOTE_RECOMMEND_UPPERBOUND"`
	VoteRecommendLower int `mapstructure:"VOTE_RECOMMEND_LOWERBOUND"`
}

var AppConfig *Config

// LoadConfig loads the configuration from a .env file and environment variables.
func LoadConfig() {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	viper.SetDefault("VOTE_ALIKE_UPPERBOUND", 10)
	viper.SetDefault("VOTE_ALIKE_LOWERBOUND", 3)
	viper.SetDefault("VOTE_TAG_UPPERBOUND", 10)
	viper.SetDefault("VOTE_TAG_LOWERBOUND", 3)
	viper.SetDefault("VOTE_RECOMMEND_UPPERBOUND", 10)
	viper.SetDefault("VOTE_RECOMMEND_LOWERBOUND", 3)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}
