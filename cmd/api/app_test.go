package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-sla/internal/persistence"
)

func TestRequirePoolRejectsMissingConnection(t *testing.T) {
	require.EqualError(t, requirePool(&persistence.Postgres{}), "POSTGRES_DSN is required")
	require.Error(t, requirePool(nil))
}
