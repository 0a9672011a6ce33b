package marketupdates

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// LoadProposal reads a proposal document from path.
func LoadProposal(path string) (*Proposal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := NewProposal(f)
	if err != nil {
		return nil, fmt.Errorf("load proposal %s: %w", path, err)
	}

	return p, nil
}

// WriteProposal encodes p as indented JSON.
func WriteProposal(w io.Writer, p *Proposal) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(p)
}
