package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port          int
	LogLevel      string
	GapMinutes    int
	MaxPerConvo   int
	MaxTotal      int
	MinTextLen    int
	ToxicCutoff   float64
	HFToken       string
	EmotionModel  string
	ToxicityModel string
	TopicsModel   string
}

func Load() Config {
	return Config{
		Port:          envInt("TELESTATS_PORT", 8610),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		GapMinutes:    envInt("TELESTATS_GAP_MINUTES", 30),
		MaxPerConvo:   envInt("TELESTATS_MAX_PER_CONVO", 200),
		MaxTotal:      envInt("TELESTATS_MAX_TOTAL", 2000),
		MinTextLen:    envInt("TELESTATS_MIN_TEXT_LEN", 5),
		ToxicCutoff:   envFloat("TELESTATS_TOXIC_CUTOFF", 0.5),
		HFToken:       envStr("HF_API_TOKEN", ""),
		EmotionModel:  envStr("TELESTATS_EMOTION_MODEL", "Aniemore/rubert-tiny2-russian-emotion-detection"),
		ToxicityModel: envStr("TELESTATS_TOXICITY_MODEL", "s-nlp/russian_toxicity_classifier"),
		TopicsModel:   envStr("TELESTATS_TOPICS_MODEL", "apanc/russian-sensitive-topics"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
