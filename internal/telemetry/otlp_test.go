package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_NoEndpointIsDisabled(t *testing.T) {
	p, err := Setup(context.Background(), "", "test")
	require.NoError(t, err)
	assert.False(t, p.Enabled())

	_, span := p.Tracer().Start(context.Background(), "list-instances")
	span.SetAttributes(Operation("list-instances"))
	span.End()

	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestProvider_NilSafe(t *testing.T) {
	var p *Provider
	assert.False(t, p.Enabled())
	assert.NotNil(t, p.Tracer())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestSetup_WithEndpoint(t *testing.T) {
	// The exporter connects lazily, so an unreachable endpoint still builds.
	p, err := Setup(context.Background(), "127.0.0.1:4318", "test")
	require.NoError(t, err)
	assert.True(t, p.Enabled())
	assert.NoError(t, p.Shutdown(context.Background()))
}
