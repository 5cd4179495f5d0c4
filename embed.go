// Package radiomirchi holds files embedded into the binary.
package radiomirchi

import _ "embed"

// ComposeFile is the deployment descriptor shipped with the repository.
//
//go:embed docker-compose.yml
var ComposeFile []byte
