package config

// Default returns a Config populated with the repository's baseline
// defaults. Load starts from this value before applying any file on disk,
// so an absent config file still produces a runnable configuration.
func Default() Config {
	return Config{
		Paths: Paths{
			ArtifactRoot:  "~/.local/share/shortfactory/artifacts",
			StateDir:      "~/.local/share/shortfactory/state",
			LogDir:        "~/.local/share/shortfactory/logs",
			CredentialDir: "~/.config/shortfactory/credentials",
		},
		Dashboard: Dashboard{
			RequestTimeoutSec: 15,
		},
		TextGen: TextGen{
			BaseURL:        "https://openrouter.ai/api/v1",
			TimeoutSeconds: 60,
		},
		TTS: TTS{
			Provider:       "elevenlabs",
			TimeoutSeconds: 60,
		},
		TrendIngest: TrendIngest{
			Enabled:        false,
			MinUpvotes:     50,
			TimeoutSeconds: 15,
		},
		StockSearch: StockSearch{
			Provider:       "pexels",
			TimeoutSeconds: 20,
		},
		Publishing: Publishing{
			MadeForKids:    false,
			CategoryID:     "22",
			Privacy:        "public",
			TimeoutSeconds: 120,
		},
		Workflow: Workflow{
			DiscoveryIntervalSeconds:  5,
			ErrorRetryIntervalSeconds: 30,
			DrainDeadlineSeconds:      120,
			DailyRunHour:              8,
		},
		StagePool: StagePool{
			Scripting:     4,
			Narrating:     2,
			SourcingClips: 2,
			Assembling:    1,
			Captioning:    1,
			Metadata:      4,
			Publishing:    1,
			QueueCapacity: 64,
		},
		Resilience: Resilience{
			FailureThreshold:            5,
			WindowSeconds:               60,
			CoolDownSeconds:             30,
			BulkheadMaxInFlight:         4,
			BulkheadQueueDepth:          16,
			BulkheadQueueTimeoutSeconds: 30,
		},
		Logging: Logging{
			Format:        "console",
			Level:         "info",
			RetentionDays: 14,
		},
		Retention: Retention{
			GraceDays: 7,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
		},
	}
}
