// Package catalog holds the compiled-in USSD menu: the services offered per
// language, their sub-options and the keyword rules that map a selection to
// a ledger action. A Catalog is built once at startup and never mutated.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

//go:embed catalog.json
var defaultCatalog []byte

// BackKey is the sub-option key that returns to the service list.
const BackKey = "0"

type Action int

const (
	ActionGeneric Action = iota
	ActionDeposit
	ActionBuyAirtime
	ActionSendMoney
	ActionBalanceInquiry
)

var actionNames = map[string]Action{
	"deposit":    ActionDeposit,
	"airtime":    ActionBuyAirtime,
	"send_money": ActionSendMoney,
	"balance":    ActionBalanceInquiry,
}

func (a Action) String() string {
	for name, action := range actionNames {
		if action == a {
			return name
		}
	}
	return "generic"
}

// NeedsAmount reports whether the action prompts for an amount before it runs.
func (a Action) NeedsAmount() bool {
	return a == ActionDeposit || a == ActionBuyAirtime || a == ActionSendMoney
}

type Service struct {
	Name    string
	Options []string
}

// Option returns the label whose "<key>. " prefix matches key.
func (s Service) Option(key string) (string, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false
	}
	for _, label := range s.Options {
		if optionKey(label) == key {
			return label, true
		}
	}
	return "", false
}

type Menu struct {
	Locale   string
	services []Service
}

func (m *Menu) Len() int {
	return len(m.services)
}

func (m *Menu) Service(index int) (Service, bool) {
	if index < 0 || index >= len(m.services) {
		return Service{}, false
	}
	s := m.services[index]
	return Service{Name: s.Name, Options: append([]string(nil), s.Options...)}, true
}

// LastPage is the highest page index that still shows at least one service.
func (m *Menu) LastPage(size int) int {
	if len(m.services) == 0 || size <= 0 {
		return 0
	}
	return (len(m.services) - 1) / size
}

// Window returns the service names shown on page, and whether a previous or a
// next page exists.
func (m *Menu) Window(page, size int) (names []string, hasPrev, hasNext bool) {
	start := page * size
	if start < 0 || start >= len(m.services) {
		return nil, page > 0, false
	}
	end := start + size
	if end > len(m.services) {
		end = len(m.services)
	}
	for _, s := range m.services[start:end] {
		names = append(names, s.Name)
	}
	return names, page > 0, end < len(m.services)
}

type rule struct {
	action   Action
	keywords []string
}

type Catalog struct {
	pageSize int
	menus    map[string]*Menu
	rules    []rule
}

type fileLanguage struct {
	Locale   string `mapstructure:"locale"`
	Services []struct {
		Name    string   `mapstructure:"name"`
		Options []string `mapstructure:"options"`
	} `mapstructure:"services"`
}

type fileCatalog struct {
	PageSize  int                     `mapstructure:"page_size"`
	Languages map[string]fileLanguage `mapstructure:"languages"`
	Actions   []struct {
		Action   string   `mapstructure:"action"`
		Keywords []string `mapstructure:"keywords"`
	} `mapstructure:"actions"`
}

// Load reads the catalog from path, or the compiled-in catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(defaultCatalog, "json")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		ext = "json"
	}
	return Parse(data, ext)
}

func Default() *Catalog {
	c, err := Parse(defaultCatalog, "json")
	if err != nil {
		panic("catalog: compiled-in catalog is invalid: " + err.Error())
	}
	return c
}

func Parse(data []byte, configType string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	raw := fileCatalog{}
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return build(raw)
}

func build(raw fileCatalog) (*Catalog, error) {
	if raw.PageSize <= 0 {
		return nil, errors.New("catalog: page_size must be > 0")
	}
	c := &Catalog{pageSize: raw.PageSize, menus: map[string]*Menu{}}
	count := -1
	for _, lang := range []string{"1", "2"} {
		fl, ok := raw.Languages[lang]
		if !ok {
			return nil, fmt.Errorf("catalog: language %q missing", lang)
		}
		if len(fl.Services) == 0 {
			return nil, fmt.Errorf("catalog: language %q has no services", lang)
		}
		if count >= 0 && len(fl.Services) != count {
			return nil, fmt.Errorf("catalog: language %q lists %d services, expected %d", lang, len(fl.Services), count)
		}
		count = len(fl.Services)
		menu := &Menu{Locale: fl.Locale}
		for i, s := range fl.Services {
			if strings.TrimSpace(s.Name) == "" {
				return nil, fmt.Errorf("catalog: language %q service %d has no name", lang, i+1)
			}
			if len(s.Options) != 3 {
				return nil, fmt.Errorf("catalog: %q must have 3 options, got %d", s.Name, len(s.Options))
			}
			for _, label := range s.Options {
				if optionKey(label) == "" {
					return nil, fmt.Errorf("catalog: option %q of %q has no key", label, s.Name)
				}
			}
			if optionKey(s.Options[2]) != BackKey {
				return nil, fmt.Errorf("catalog: last option of %q must be the back option", s.Name)
			}
			menu.services = append(menu.services, Service{Name: s.Name, Options: append([]string(nil), s.Options...)})
		}
		c.menus[lang] = menu
	}
	for _, a := range raw.Actions {
		action, ok := actionNames[strings.ToLower(a.Action)]
		if !ok {
			return nil, fmt.Errorf("catalog: unknown action %q", a.Action)
		}
		r := rule{action: action}
		for _, k := range a.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				r.keywords = append(r.keywords, k)
			}
		}
		c.rules = append(c.rules, r)
	}
	return c, nil
}

func (c *Catalog) PageSize() int {
	return c.pageSize
}

func (c *Catalog) Menu(lang string) (*Menu, bool) {
	m, ok := c.menus[lang]
	return m, ok
}

// Classify matches the service name and option label, case-insensitively,
// against the keyword rules in order. The first rule that hits wins.
func (c *Catalog) Classify(service, option string) Action {
	service, option = strings.ToLower(service), strings.ToLower(option)
	for _, r := range c.rules {
		for _, k := range r.keywords {
			if strings.Contains(service, k) || strings.Contains(option, k) {
				return r.action
			}
		}
	}
	return ActionGeneric
}

// OptionText strips the "<key>. " prefix from an option label.
func OptionText(label string) string {
	_, text, found := strings.Cut(label, ".")
	if !found {
		return label
	}
	return strings.TrimSpace(text)
}

func optionKey(label string) string {
	key, _, found := strings.Cut(label, ".")
	if !found {
		return ""
	}
	return strings.TrimSpace(key)
}
