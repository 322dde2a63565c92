// Package verify checks detached minisign signatures over fetched listings.
package verify

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jedisct1/go-minisign"
)

// SignatureSuffix is appended to the listing URL to locate its signature.
const SignatureSuffix = ".minisig"

// SignatureError reports a listing that could not be verified.
type SignatureError struct {
	Source string
	Err    error
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("verify %s: %v", e.Source, e.Err)
}

func (e *SignatureError) Unwrap() error {
	return e.Err
}

// VerifyMinisign checks sig (the text of a .minisig file) over content with the
// public key stored at pubKeyPath.
func VerifyMinisign(content, sig []byte, pubKeyPath string) error {
	pubKey, err := minisign.NewPublicKeyFromFile(pubKeyPath)
	if err != nil {
		return fmt.Errorf("read minisign pubkey: %w", err)
	}

	signature, err := minisign.DecodeSignature(strings.TrimSpace(string(sig)))
	if err != nil {
		return fmt.Errorf("read minisign signature: %w", err)
	}

	valid, err := pubKey.Verify(content, signature)
	if err != nil {
		return fmt.Errorf("minisign: verification error: %w", err)
	}
	if !valid {
		return fmt.Errorf("minisign: signature verification failed")
	}
	return nil
}

// Fetcher downloads raw bytes; *listing.Client satisfies it.
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Listing verifies listing pages published with a sibling ".minisig" file.
type Listing struct {
	PublicKeyPath string
	Fetcher       Fetcher
}

func (l *Listing) Verify(ctx context.Context, listingURL string, content []byte) error {
	sigURL, err := SignatureURL(listingURL)
	if err != nil {
		return &SignatureError{Source: listingURL, Err: err}
	}
	sig, err := l.Fetcher.FetchBytes(ctx, sigURL)
	if err != nil {
		return &SignatureError{Source: sigURL, Err: err}
	}
	if err := VerifyMinisign(content, sig, l.PublicKeyPath); err != nil {
		return &SignatureError{Source: listingURL, Err: err}
	}
	return nil
}

// SignatureURL appends SignatureSuffix to the path of listingURL. The query is
// kept and the fragment dropped.
func SignatureURL(listingURL string) (string, error) {
	u, err := url.Parse(listingURL)
	if err != nil {
		return "", fmt.Errorf("parse listing url: %w", err)
	}
	u.Path += SignatureSuffix
	u.RawPath = ""
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}
