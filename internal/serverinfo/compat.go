// Package serverinfo checks that the backend speaks an API version this
// client understands.
package serverinfo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/qpath/qpath/internal/api"
)

// MinServerVersion is the oldest backend release the client supports.
const MinServerVersion = "v1.0.0"

// DevVersion is the version string of an unreleased build.
const DevVersion = "(devel)"

var ErrInvalidVersion = errors.New("invalid version")

// Source fetches the backend root document.
type Source interface {
	ServerInfo(ctx context.Context) (*api.ServerInfo, error)
}

// Result is the outcome of a compatibility check.
type Result struct {
	ClientVersion string
	ServerVersion string
	Compatible    bool
	Reason        string
}

// Checker compares the client version with the backend's.
type Checker struct {
	source     Source
	minVersion string
}

// NewChecker creates a Checker that requires at least MinServerVersion.
func NewChecker(source Source) *Checker {
	return &Checker{source: source, minVersion: MinServerVersion}
}

// Check fetches the backend version and compares it with clientVersion.
// The server must be at least the minimum version. A released client
// must share the server's major version; a development build only
// checks the minimum.
func (c *Checker) Check(ctx context.Context, clientVersion string) (*Result, error) {
	info, err := c.source.ServerInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch server info: %w", err)
	}

	server, ok := Canonical(info.Version)
	if !ok {
		return nil, fmt.Errorf("server version %q: %w", info.Version, ErrInvalidVersion)
	}
	res := &Result{ClientVersion: clientVersion, ServerVersion: server, Compatible: true}

	if semver.Compare(server, c.minVersion) < 0 {
		res.Compatible = false
		res.Reason = fmt.Sprintf("servidor %s é anterior ao mínimo suportado %s", server, c.minVersion)
		return res, nil
	}

	if clientVersion == DevVersion || clientVersion == "" {
		return res, nil
	}
	client, ok := Canonical(clientVersion)
	if !ok {
		return nil, fmt.Errorf("client version %q: %w", clientVersion, ErrInvalidVersion)
	}
	res.ClientVersion = client
	if semver.Major(client) != semver.Major(server) {
		res.Compatible = false
		res.Reason = fmt.Sprintf("versão principal do cliente %s difere da do servidor %s",
			semver.Major(client), semver.Major(server))
	}
	return res, nil
}

// Canonical normalizes "1.2", "v1.2.0" and the like to "v1.2.0".
func Canonical(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	c := semver.Canonical(v)
	return c, c != ""
}
