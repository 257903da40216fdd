// Package templates contains embedded template files.
package templates

import (
	_ "embed"
)

//go:embed config.template

// PayloadConfigYAML contains the default payload configuration written by
// setup and init. Credential fields are intentionally empty.
var PayloadConfigYAML []byte

//go:embed env.template

// EnvFile contains the embedded environment file template.
var EnvFile []byte

//go:embed docker-compose.template

// ComposeYAML contains the base compose file for local container runs.
var ComposeYAML []byte

//go:embed docker-compose-db.template

// ComposeDBYAML contains the compose overlay provisioning a local postgres
// instance. The credential placeholders are filled from the payload
// configuration's database URL at render time.
var ComposeDBYAML []byte
