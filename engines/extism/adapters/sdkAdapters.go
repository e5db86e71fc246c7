package adapters

import (
	"context"
	"maps"

	extismSDK "github.com/extism/go-sdk"
	"github.com/tetratelabs/wazero"
)

type sdkCompiledPlugin struct {
	plugin *extismSDK.CompiledPlugin
}

// NewCompiledPluginAdapter wraps an SDK compiled plugin. It returns nil for a nil plugin.
func NewCompiledPluginAdapter(plugin *extismSDK.CompiledPlugin) CompiledPlugin {
	if plugin == nil {
		return nil
	}
	return &sdkCompiledPlugin{plugin: plugin}
}

func (c *sdkCompiledPlugin) Instance(
	ctx context.Context,
	config extismSDK.PluginInstanceConfig,
) (PluginInstance, error) {
	instance, err := c.plugin.Instance(ctx, config)
	if err != nil {
		return nil, err
	}
	return &sdkPluginAdapter{plugin: instance}, nil
}

func (c *sdkCompiledPlugin) Close(ctx context.Context) error {
	return c.plugin.Close(ctx)
}

type sdkPluginAdapter struct {
	plugin *extismSDK.Plugin
}

func (p *sdkPluginAdapter) CallWithContext(ctx context.Context, name string, data []byte) (uint32, []byte, error) {
	return p.plugin.CallWithContext(ctx, name, data)
}

func (p *sdkPluginAdapter) FunctionExists(name string) bool {
	return p.plugin.FunctionExists(name)
}

// SetConfig merges values into a copy of the instance config. The SDK hands every instance
// the manifest's map, so writing into it would leak values between instances.
func (p *sdkPluginAdapter) SetConfig(values map[string]string) {
	merged := make(map[string]string, len(p.plugin.Config)+len(values))
	maps.Copy(merged, p.plugin.Config)
	maps.Copy(merged, values)
	p.plugin.Config = merged
}

func (p *sdkPluginAdapter) Close(ctx context.Context) error {
	return p.plugin.Close(ctx)
}

// NewPluginInstanceConfig returns the per-instance config. Guests get no filesystem, no
// environment and no clock beyond what wazero provides by default.
func NewPluginInstanceConfig() extismSDK.PluginInstanceConfig {
	return extismSDK.PluginInstanceConfig{
		ModuleConfig: wazero.NewModuleConfig(),
	}
}
