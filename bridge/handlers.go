package bridge

import (
	"context"
	"errors"
	"slices"

	"github.com/robbyt/go-chartbridge/bridge/marshal"
)

// handler runs one call operation against the adapter. args always has exactly one entry per
// declared argument; missing optional arguments are absent payloads. Handlers return
// marshalling problems wrapped in errDecode and adapter failures unwrapped.
type handler func(ctx context.Context, args []marshal.Payload) (marshal.Payload, error)

// binder prepares a handler for one adapter. It returns errUnavailable when an optional
// capability is not implemented, and ErrMissingCapability when a required one is not.
type binder func(api HostAPI) (handler, error)

// constantBinder produces the value of a constant operation.
type constantBinder func(api HostAPI) string

var errUnavailable = errors.New("optional capability unavailable")

// decodeError marks an error as caused by the guest payload rather than the adapter.
type decodeError struct{ err error }

func (e decodeError) Error() string { return e.err.Error() }
func (e decodeError) Unwrap() error { return e.err }

func errDecode(err error) error {
	if err == nil {
		return nil
	}
	return decodeError{err: err}
}

func encodeResult(v any) (marshal.Payload, error) {
	p, err := marshal.Encode(v)
	if err != nil {
		return marshal.Absent(), errDecode(err)
	}
	return p, nil
}

// str returns the text of a raw argument. An omitted optional argument reads as "".
func str(p marshal.Payload) string {
	if s, ok := marshal.DecodeString(p); ok {
		return s
	}
	return ""
}

func decodeAny(p marshal.Payload) (any, error) {
	v, _, err := marshal.Decode(p)
	return v, errDecode(err)
}

func decodeObject(p marshal.Payload) (map[string]any, error) {
	v, err := marshal.DecodeObject(p)
	return v, errDecode(err)
}

var constants = map[string]constantBinder{
	OpUserLang:  func(api HostAPI) string { return api.GetLang() },
	OpUserLogin: func(api HostAPI) string { return api.GetLogin() },
	OpWrapFn:    func(HostAPI) string { return marshal.WrappedFnKey },
	OpWrapHTML:  func(HostAPI) string { return marshal.WrappedHTMLKey },
}

var binders = map[string]binder{
	OpGetTranslation: func(api HostAPI) (handler, error) {
		return func(ctx context.Context, args []marshal.Payload) (marshal.Payload, error) {
			params, err := decodeObject(args[2])
			if err != nil {
				return marshal.Absent(), err
			}
			s, err := api.GetTranslation(ctx, str(args[0]), str(args[1]), params)
			if err != nil {
				return marshal.Absent(), err
			}
			return marshal.Raw(s), nil
		}, nil
	},

	OpGetSharedData: func(api HostAPI) (handler, error) {
		return func(ctx context.Context, _ []marshal.Payload) (marshal.Payload, error) {
			data, err := api.GetSharedData(ctx)
			if err != nil {
				return marshal.Absent(), err
			}
			if data == nil {
				data = map[string]any{}
			}
			return encodeResult(data)
		}, nil
	},

	OpAttachHandler: func(api HostAPI) (handler, error) {
		return attach(api.AttachHandler), nil
	},

	OpAttachFormatter: func(api HostAPI) (handler, error) {
		return attach(api.AttachFormatter), nil
	},

	OpGetSecrets: func(api HostAPI) (handler, error) {
		sp, ok := api.(SecretsProvider)
		if !ok {
			return nil, errUnavailable
		}
		return func(ctx context.Context, _ []marshal.Payload) (marshal.Payload, error) {
			secrets, err := sp.GetSecrets(ctx)
			if err != nil {
				return marshal.Absent(), err
			}
			if secrets == nil {
				secrets = map[string]string{}
			}
			return encodeResult(secrets)
		}, nil
	},

	OpResolveRelative: func(api HostAPI) (handler, error) {
		return func(ctx context.Context, args []marshal.Payload) (marshal.Payload, error) {
			resolved, err := api.ResolveRelative(ctx, str(args[0]), IntervalPart(str(args[1])))
			if err != nil {
				return marshal.Absent(), err
			}
			return encodeOptional(resolved)
		}, nil
	},

	OpResolveInterval: func(api HostAPI) (handler, error) {
		return func(ctx context.Context, args []marshal.Payload) (marshal.Payload, error) {
			interval, err := api.ResolveInterval(ctx, str(args[0]))
			if err != nil {
				return marshal.Absent(), err
			}
			return encodeOptional(interval)
		}, nil
	},

	OpResolveOperation: func(api HostAPI) (handler, error) {
		return func(ctx context.Context, args []marshal.Payload) (marshal.Payload, error) {
			resolved, err := api.ResolveOperation(ctx, str(args[0]))
			if err != nil {
				return marshal.Absent(), err
			}
			return encodeOptional(resolved)
		}, nil
	},

	OpSetError: func(api HostAPI) (handler, error) {
		return report(api.SetError), nil
	},

	OpSetChartsInsights: func(api HostAPI) (handler, error) {
		return report(api.SetChartsInsights), nil
	},

	OpGetWidgetConfig: func(api HostAPI) (handler, error) {
		wp, ok := api.(WidgetConfigProvider)
		if !ok {
			return nil, errUnavailable
		}
		return getter(wp.GetWidgetConfig), nil
	},

	OpGetActionParams: func(api HostAPI) (handler, error) {
		ap, ok := api.(ActionParamsProvider)
		if !ok {
			return nil, errUnavailable
		}
		return getter(ap.GetActionParams), nil
	},

	OpUpdateActionParams: withData(func(da DataAccessor) handler {
		return mutate(da.UpdateActionParams)
	}),

	OpGetLoadedData: withData(func(da DataAccessor) handler {
		return getter(da.GetLoadedData)
	}),

	OpGetLoadedDataStats: withData(func(da DataAccessor) handler {
		return getter(da.GetLoadedDataStats)
	}),

	OpSetDataSourceInfo: withData(func(da DataAccessor) handler {
		return func(ctx context.Context, args []marshal.Payload) (marshal.Payload, error) {
			info, err := decodeAny(args[1])
			if err != nil {
				return marshal.Absent(), err
			}
			return marshal.Absent(), da.SetDataSourceInfo(ctx, str(args[0]), info)
		}
	}),

	OpUpdateConfig: withConfig(func(cm ConfigMutator) handler {
		return mutate(cm.UpdateConfig)
	}),

	OpUpdateHighchartsConfig: withConfig(func(cm ConfigMutator) handler {
		return mutate(cm.UpdateHighchartsConfig)
	}),

	OpSetSideHTML: withConfig(func(cm ConfigMutator) handler {
		return setText(cm.SetSideHTML)
	}),

	OpSetSideMarkdown: withConfig(func(cm ConfigMutator) handler {
		return setText(cm.SetSideMarkdown)
	}),

	OpSetExtra: withConfig(func(cm ConfigMutator) handler {
		return func(ctx context.Context, args []marshal.Payload) (marshal.Payload, error) {
			value, present, err := marshal.Decode(args[1])
			if err != nil {
				return marshal.Absent(), errDecode(err)
			}
			return marshal.Absent(), cm.SetExtra(ctx, str(args[0]), value, present)
		}
	}),

	OpSetExportFilename: withConfig(func(cm ConfigMutator) handler {
		return setText(cm.SetExportFilename)
	}),
}

func attach(
	fn func(context.Context, map[string]any) (map[string]any, error),
) handler {
	return func(ctx context.Context, args []marshal.Payload) (marshal.Payload, error) {
		cfg, err := decodeObject(args[0])
		if err != nil {
			return marshal.Absent(), err
		}
		descriptor, err := fn(ctx, cfg)
		if err != nil {
			return marshal.Absent(), err
		}
		return encodeResult(descriptor)
	}
}

func getter(fn func(context.Context) (any, error)) handler {
	return func(ctx context.Context, _ []marshal.Payload) (marshal.Payload, error) {
		v, err := fn(ctx)
		if err != nil {
			return marshal.Absent(), err
		}
		return encodeResult(v)
	}
}

func report(fn func(context.Context, any) error) handler {
	return func(ctx context.Context, args []marshal.Payload) (marshal.Payload, error) {
		v, err := decodeAny(args[0])
		if err != nil {
			return marshal.Absent(), err
		}
		return marshal.Absent(), fn(ctx, v)
	}
}

func mutate(fn func(context.Context, map[string]any) error) handler {
	return func(ctx context.Context, args []marshal.Payload) (marshal.Payload, error) {
		obj, err := decodeObject(args[0])
		if err != nil {
			return marshal.Absent(), err
		}
		return marshal.Absent(), fn(ctx, obj)
	}
}

func setText(fn func(context.Context, string) error) handler {
	return func(ctx context.Context, args []marshal.Payload) (marshal.Payload, error) {
		return marshal.Absent(), fn(ctx, str(args[0]))
	}
}

// encodeOptional encodes a nil pointer as JSON null and anything else as its JSON form.
func encodeOptional[T any](v *T) (marshal.Payload, error) {
	if v == nil {
		return marshal.Raw("null"), nil
	}
	return encodeResult(*v)
}

func withData(build func(DataAccessor) handler) binder {
	return func(api HostAPI) (handler, error) {
		da, ok := api.(DataAccessor)
		if !ok {
			return nil, ErrMissingCapability
		}
		return build(da), nil
	}
}

func withConfig(build func(ConfigMutator) handler) binder {
	return func(api HostAPI) (handler, error) {
		cm, ok := api.(ConfigMutator)
		if !ok {
			return nil, ErrMissingCapability
		}
		return build(cm), nil
	}
}

// canonical holds the descriptor of every operation the installer can bind.
var canonical = func() map[string]Operation {
	m := make(map[string]Operation)
	for _, op := range cloneOps(baseTier, dataTier, configTier) {
		m[op.Name] = op
	}
	return m
}()

func knownOperation(op Operation) bool {
	c, ok := canonical[op.Name]
	if !ok {
		return false
	}
	return c.Direction == op.Direction &&
		c.Result == op.Result &&
		c.WireName() == op.WireName() &&
		slices.Equal(c.Args, op.Args)
}
