package config

import (
	"os"
)

const envTemplate = `# Auto-Blogger Configuration
OPENAI_API_KEY=your-api-key-here
DEFAULT_MODEL=gpt-4o-mini
DEFAULT_LANGUAGE=Korean
DEFAULT_TONE=professional
DEFAULT_LENGTH=medium
TEMPERATURE=0.7

# OpenAI-compatible API endpoint (optional)
# For Azure OpenAI: https://your-resource.openai.azure.com/
# For other compatible services: https://api.your-service.com/v1
OPENAI_API_BASE=

# MCP Servers (comma-separated URLs for HTTP-based MCP servers)
# Example: MCP_SERVERS=http://localhost:8000,https://api.example.com/mcp
MCP_SERVERS=

# RSS/Atom feeds used as additional research material (comma-separated)
RESEARCH_FEEDS=
# Fetch the full article behind short feed summaries (true/false)
RESEARCH_FULL_TEXT=false

# Unsplash credentials (all three are required to insert images)
UNSPLASH_APPLICATION_ID=
UNSPLASH_ACCESS_KEY=
UNSPLASH_SECRET_KEY=
`

// WriteEnvTemplate writes a commented .env file. An existing file is only
// replaced when force is set.
func WriteEnvTemplate(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ErrEnvExists
	}
	return os.WriteFile(path, []byte(envTemplate), 0600)
}
