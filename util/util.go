package util

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	_ "embed"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"html"
	"os"
	"regexp"
	"strings"
)

//go:embed version.txt
var embeddedVersion string

var markdownLink = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

type RsaKeyPair struct {
	Private string
	Public  string
}

func GetVersion() string {
	return strings.TrimSpace(embeddedVersion)
}

func GetNameAndVersion() string {
	return fmt.Sprintf("%s / %s", Name, GetVersion())
}

// NormalizeInput flattens newlines and escapes HTML so user text can be stored as content.
func NormalizeInput(text string) string {
	normalized := strings.Replace(text, "\n", " ", -1)
	normalized = html.EscapeString(normalized)
	return normalized
}

func PrettyPrint(i interface{}) string {
	s, _ := json.MarshalIndent(i, "", " ")
	return string(s)
}

// GeneratePemKeypair creates an RSA key pair. The public half is PKIX encoded, which is what
// ActivityPub servers expect in publicKeyPem.
func GeneratePemKeypair(bitSize int) (*RsaKeyPair, error) {
	key, err := rsa.GenerateKey(rand.Reader, bitSize)
	if err != nil {
		return nil, err
	}

	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, err
	}

	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubBytes,
	})

	return &RsaKeyPair{Private: string(keyPEM), Public: string(pubPEM)}, nil
}

// LoadOrCreateKeypair reads a PEM private key from path, generating and writing one first
// if the file does not exist.
func LoadOrCreateKeypair(path string, bitSize int) (*RsaKeyPair, error) {
	buf, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		pair, err := GeneratePemKeypair(bitSize)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, []byte(pair.Private), 0600); err != nil {
			return nil, fmt.Errorf("write key %s: %w", path, err)
		}
		return pair, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read key %s: %w", path, err)
	}

	block, _ := pem.Decode(buf)
	if block == nil {
		return nil, fmt.Errorf("read key %s: no PEM block", path)
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("read key %s: %w", path, err)
	}
	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, err
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	return &RsaKeyPair{Private: string(buf), Public: string(pubPEM)}, nil
}

// MarkdownLinksToHTML converts Markdown links [text](url) to HTML <a> tags
func MarkdownLinksToHTML(text string) string {
	return markdownLink.ReplaceAllStringFunc(text, func(match string) string {
		matches := markdownLink.FindStringSubmatch(match)
		if len(matches) == 3 {
			linkText := html.EscapeString(matches[1])
			linkURL := html.EscapeString(matches[2])
			return fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer">%s</a>`, linkURL, linkText)
		}
		return match
	})
}
