//go:build integration
// +build integration

package integration

import (
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestDomainImportsAreInfrastructureFree(t *testing.T) {
	root := integrationRepoRoot(t)
	domainDir := filepath.Join(root, "internal", "services", "governance", "domain")
	allowlist := domainImportAllowlist()
	var violations []string

	err := filepath.WalkDir(domainDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}

		fset := token.NewFileSet()
		file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range file.Imports {
			importPath, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				return err
			}
			if !isForbiddenDomainImport(importPath) {
				continue
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if _, ok := allowlist[rel]; ok {
				continue
			}
			violations = append(violations, rel+" imports "+importPath)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("scan domain imports: %v", err)
	}

	if len(violations) > 0 {
		t.Fatalf("the engine package must stay free of storage and transport imports:\n- %s", strings.Join(violations, "\n- "))
	}
}

func TestDomainImportGuardrailFlagsInfrastructure(t *testing.T) {
	forbidden := []string{
		"database/sql",
		"net/http",
		"github.com/nats-io/nats.go",
		"github.com/prometheus/client_golang/prometheus",
		"github.com/modelcontextprotocol/go-sdk/mcp",
		"modernc.org/sqlite",
		"github.com/signoria/signoria/internal/services/governance/storage",
		"github.com/signoria/signoria/internal/services/governance/api",
	}
	for _, importPath := range forbidden {
		if !isForbiddenDomainImport(importPath) {
			t.Errorf("expected %s to be forbidden", importPath)
		}
	}

	allowed := []string{
		"context",
		"strings",
		"sync",
		"time",
		"github.com/signoria/signoria/internal/platform/errors",
	}
	for _, importPath := range allowed {
		if isForbiddenDomainImport(importPath) {
			t.Errorf("expected %s to be allowed", importPath)
		}
	}
}

func domainImportAllowlist() map[string]struct{} {
	return map[string]struct{}{}
}

func isForbiddenDomainImport(importPath string) bool {
	path := strings.TrimSpace(importPath)
	if path == "" {
		return false
	}
	prefixes := []string{
		"database/sql",
		"net/http",
		"github.com/golang-jwt/",
		"github.com/modelcontextprotocol/",
		"github.com/nats-io/",
		"github.com/prometheus/",
		"go.opentelemetry.io/",
		"golang.org/x/net/",
		"modernc.org/",
		"github.com/signoria/signoria/internal/services/governance/api",
		"github.com/signoria/signoria/internal/services/governance/app",
		"github.com/signoria/signoria/internal/services/governance/chain",
		"github.com/signoria/signoria/internal/services/governance/metrics",
		"github.com/signoria/signoria/internal/services/governance/notify",
		"github.com/signoria/signoria/internal/services/governance/render",
		"github.com/signoria/signoria/internal/services/governance/storage",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
