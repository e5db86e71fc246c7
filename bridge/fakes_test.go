package bridge

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// baseAPI implements only HostAPI.
type baseAPI struct {
	lang, login string
	interval    *Interval
	err         error
	errors      []any
}

func (a *baseAPI) GetTranslation(_ context.Context, keyset, key string, params map[string]any) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	if name, ok := params["name"].(string); ok {
		return keyset + "." + key + ":" + name, nil
	}
	return keyset + "." + key, nil
}

func (a *baseAPI) GetSharedData(context.Context) (map[string]any, error) {
	return map[string]any{"region": "eu"}, a.err
}

func (a *baseAPI) GetLang() string  { return a.lang }
func (a *baseAPI) GetLogin() string { return a.login }

func (a *baseAPI) AttachHandler(_ context.Context, cfg map[string]any) (map[string]any, error) {
	return map[string]any{"handler": cfg}, a.err
}

func (a *baseAPI) AttachFormatter(_ context.Context, cfg map[string]any) (map[string]any, error) {
	return map[string]any{"formatter": cfg}, a.err
}

func (a *baseAPI) ResolveRelative(_ context.Context, rel string, part IntervalPart) (*string, error) {
	if rel == "" {
		return nil, a.err
	}
	s := rel + "@" + string(part)
	return &s, a.err
}

func (a *baseAPI) ResolveInterval(context.Context, string) (*Interval, error) {
	return a.interval, a.err
}

func (a *baseAPI) ResolveOperation(_ context.Context, op string) (*string, error) {
	if op != "__gt_5" {
		return nil, nil
	}
	s := "> 5"
	return &s, nil
}

func (a *baseAPI) SetError(_ context.Context, v any) error {
	a.errors = append(a.errors, v)
	return a.err
}

func (a *baseAPI) SetChartsInsights(context.Context, any) error { return a.err }

// secretsAPI adds the optional secrets capability.
type secretsAPI struct {
	baseAPI
}

func (a *secretsAPI) GetSecrets(context.Context) (map[string]string, error) {
	return map[string]string{"token": "s3cr3t"}, a.err
}

// fullAPI implements every interface.
type fullAPI struct {
	secretsAPI
	extras map[string]any
	config map[string]any
}

func newFullAPI() *fullAPI {
	return &fullAPI{
		secretsAPI: secretsAPI{baseAPI: baseAPI{lang: "en", login: "alice"}},
		extras:     map[string]any{},
		config:     map[string]any{},
	}
}

func (a *fullAPI) GetWidgetConfig(context.Context) (any, error) {
	return map[string]any{"enable": true}, nil
}

func (a *fullAPI) GetActionParams(context.Context) (any, error) {
	return map[string]any{"region": []any{"eu"}}, nil
}

func (a *fullAPI) UpdateActionParams(_ context.Context, p map[string]any) error {
	a.config["actionParams"] = p
	return nil
}
func (a *fullAPI) GetLoadedData(context.Context) (any, error) {
	return map[string]any{"rows": []any{int64(1)}}, nil
}
func (a *fullAPI) GetLoadedDataStats(context.Context) (any, error) {
	return map[string]any{"sources": int64(1)}, nil
}
func (a *fullAPI) SetDataSourceInfo(_ context.Context, key string, info any) error {
	a.config["source:"+key] = info
	return nil
}
func (a *fullAPI) UpdateConfig(_ context.Context, f map[string]any) error {
	a.config["config"] = f
	return nil
}
func (a *fullAPI) UpdateHighchartsConfig(_ context.Context, f map[string]any) error {
	a.config["highcharts"] = f
	return nil
}
func (a *fullAPI) SetSideHTML(_ context.Context, html string) error {
	a.config["sideHtml"] = html
	return nil
}
func (a *fullAPI) SetSideMarkdown(_ context.Context, md string) error {
	a.config["sideMarkdown"] = md
	return nil
}
func (a *fullAPI) SetExtra(_ context.Context, key string, value any, present bool) error {
	if !present {
		delete(a.extras, key)
		return nil
	}
	a.extras[key] = value
	return nil
}
func (a *fullAPI) SetExportFilename(_ context.Context, name string) error {
	a.config["filename"] = name
	return nil
}

// mockObserver records observed calls.
type mockObserver struct {
	mock.Mock
}

func (m *mockObserver) ObserveCall(role Role, op string, _ time.Duration, err error) {
	m.Called(role, op, err)
}
