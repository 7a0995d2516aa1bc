package errprop

import (
	"github.com/golangci/plugin-module-register/register"
	"golang.org/x/tools/go/analysis"
)

func init() {
	register.Plugin("errprop", New)
}

// Settings is the golangci-lint configuration of the plugin.
type Settings struct {
	Entry          string    `json:"entry"`
	Dispatch       Dispatch  `json:"dispatch"`
	ResultTypes    []TypeRef `json:"result-types"`
	FutureTypes    []TypeRef `json:"future-types"`
	IgnorePackages []string  `json:"ignore-packages"`
}

func New(settings any) (register.LinterPlugin, error) {
	s, err := register.DecodeSettings[Settings](settings)
	if err != nil {
		return nil, err
	}
	return &plugin{settings: s}, nil
}

type plugin struct {
	settings Settings
}

func (p *plugin) BuildAnalyzers() ([]*analysis.Analyzer, error) {
	return []*analysis.Analyzer{NewAnalyzer(Options{
		Entry:    p.settings.Entry,
		Dispatch: p.settings.Dispatch,
		Classifier: Classifier{
			ResultTypes: p.settings.ResultTypes,
			FutureTypes: p.settings.FutureTypes,
		},
		IgnorePackages: p.settings.IgnorePackages,
	})}, nil
}

func (p *plugin) GetLoadMode() string {
	return register.LoadModeTypesInfo
}
