package config

// NewDiscordForTest creates a Discord config for testing purposes
func NewDiscordForTest(token string) *Discord {
	return &Discord{token: token}
}

// NewGitHubForTest creates a GitHub config for testing purposes
func NewGitHubForTest(appID, installationID int, privateKey, token string) *GitHub {
	return &GitHub{
		appID:          appID,
		installationID: installationID,
		privateKey:     privateKey,
		token:          token,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewSentryForTest creates a Sentry config for testing purposes
func NewSentryForTest(dsn, env string) *Sentry {
	return &Sentry{
		dsn: dsn,
		env: env,
	}
}
