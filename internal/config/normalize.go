package config

import "strings"

// normalize expands path fields and lowercases enum-like fields so
// downstream packages never need to repeat the same defensive parsing.
func (c *Config) normalize() error {
	expanded, err := expandPath(c.Paths.ArtifactRoot)
	if err != nil {
		return err
	}
	c.Paths.ArtifactRoot = expanded

	expanded, err = expandPath(c.Paths.StateDir)
	if err != nil {
		return err
	}
	c.Paths.StateDir = expanded

	expanded, err = expandPath(c.Paths.LogDir)
	if err != nil {
		return err
	}
	c.Paths.LogDir = expanded

	if strings.TrimSpace(c.Paths.CredentialDir) != "" {
		expanded, err = expandPath(c.Paths.CredentialDir)
		if err != nil {
			return err
		}
		c.Paths.CredentialDir = expanded
	}

	if strings.TrimSpace(c.Dashboard.CredentialsPath) != "" {
		expanded, err = expandPath(c.Dashboard.CredentialsPath)
		if err != nil {
			return err
		}
		c.Dashboard.CredentialsPath = expanded
	}

	if strings.TrimSpace(c.Publishing.CredentialsPath) != "" {
		expanded, err = expandPath(c.Publishing.CredentialsPath)
		if err != nil {
			return err
		}
		c.Publishing.CredentialsPath = expanded
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.TTS.Provider = strings.ToLower(strings.TrimSpace(c.TTS.Provider))
	c.StockSearch.Provider = strings.ToLower(strings.TrimSpace(c.StockSearch.Provider))
	c.Publishing.Privacy = strings.ToLower(strings.TrimSpace(c.Publishing.Privacy))

	return nil
}
