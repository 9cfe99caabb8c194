// Package persona holds the identity the assistant speaks as: the grounding
// documents loaded at startup and the system prompts composed from them.
package persona

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Documents are the two static grounding sources. Loaded once, never
// mutated.
type Documents struct {
	Summary string
	Profile string
}

// LoadDocuments reads the summary text file and the profile document. A
// profile with a .pdf extension has all its page text extracted in document
// order; anything else is read as plain text. Any unreadable file is an
// error, which callers treat as startup-fatal.
func LoadDocuments(summaryPath, profilePath string) (*Documents, error) {
	summary, err := os.ReadFile(summaryPath)
	if err != nil {
		return nil, fmt.Errorf("read summary: %w", err)
	}

	var profile string
	if strings.EqualFold(filepath.Ext(profilePath), ".pdf") {
		profile, err = extractPDFText(profilePath)
		if err != nil {
			return nil, fmt.Errorf("read profile: %w", err)
		}
	} else {
		raw, err := os.ReadFile(profilePath)
		if err != nil {
			return nil, fmt.Errorf("read profile: %w", err)
		}
		profile = string(raw)
	}

	return &Documents{
		Summary: string(summary),
		Profile: profile,
	}, nil
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not discard the rest.
			continue
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}
