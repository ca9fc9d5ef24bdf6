package modules

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"
)

// Fingerprint computes the content fingerprint of a module description:
// the hex encoded BLAKE2b-256 digest of its canonical YAML encoding.
// yaml.v3 emits struct fields in declaration order and map keys sorted, so
// equal descriptions always produce the same bytes.
func Fingerprint(d Description) (string, error) {
	canonical, err := yaml.Marshal(&d)
	if err != nil {
		return "", fmt.Errorf("failed to encode module %q: %w", d.Name, err)
	}
	sum := blake2b.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Fingerprint returns the content fingerprint of the module. The project
// back-reference does not take part: the same description found in two
// projects is one module.
func (m *Module) Fingerprint() (string, error) {
	return Fingerprint(m.FlatpakModule)
}
