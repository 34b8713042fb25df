// Package custom loads user-written Lua providers.
//
// A script declares a global Provider table (id, name, variant, group,
// group_prefix, movie, series, params, key_param) and a global function
// Records(content, locator) returning a list of record tables.
package custom

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cinesrc/cinesrc/constant"
	"github.com/cinesrc/cinesrc/content"
	"github.com/cinesrc/cinesrc/internal/scraper"
	"github.com/cinesrc/cinesrc/util"
	libs "github.com/metafates/mangal-lua-libs"
	lua "github.com/yuin/gopher-lua"
)

// Extension is the file extension of custom providers.
const Extension = ".lua"

// Definition is a provider declared by a script.
type Definition struct {
	ID          string
	Name        string
	Variant     string
	Group       string
	GroupPrefix string
	Movie       string
	Series      string
	Params      map[string]string
	KeyParam    string

	Path   string
	Digest string

	mu    sync.Mutex
	state *lua.LState
}

// Load runs the script at path and reads its declaration.
func Load(path string) (*Definition, error) {
	state := lua.NewState()
	libs.Preload(state)
	registerHTTP(state)

	digest, err := scraper.PreCompileAndLoad(state, path)
	if err != nil {
		state.Close()
		return nil, err
	}

	name := util.FileStem(path)

	table, ok := state.GetGlobal(constant.ProviderTable).(*lua.LTable)
	if !ok {
		state.Close()
		return nil, fmt.Errorf("table %s is required but not defined in %s", constant.ProviderTable, name)
	}

	if state.GetGlobal(constant.RecordsFn).Type() != lua.LTFunction {
		state.Close()
		return nil, fmt.Errorf("function %s is required but not defined in %s", constant.RecordsFn, name)
	}

	def := &Definition{
		ID:          getString(table, "id"),
		Name:        getString(table, "name"),
		Variant:     getString(table, "variant"),
		Group:       getString(table, "group"),
		GroupPrefix: getString(table, "group_prefix"),
		Movie:       getString(table, "movie"),
		Series:      getString(table, "series"),
		Params:      getStringMap(table, "params"),
		KeyParam:    getString(table, "key_param"),
		Path:        path,
		Digest:      digest,
		state:       state,
	}

	if def.ID == "" {
		def.ID = name
	}
	if def.Name == "" {
		def.Name = name
	}

	return def, nil
}

// Records calls the script's Records function. Calls are serialized because a
// Lua state is not safe for concurrent use.
func (d *Definition) Records(ctx context.Context, identity content.Identity, locator string) ([]map[string]any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == nil {
		return nil, errors.New("provider script is closed")
	}

	d.state.SetContext(ctx)
	defer d.state.RemoveContext()

	err := d.state.CallByParam(lua.P{
		Fn:      d.state.GetGlobal(constant.RecordsFn),
		NRet:    1,
		Protect: true,
	}, contentToTable(d.state, identity), lua.LString(locator))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Name, err)
	}

	ret := d.state.Get(-1)
	d.state.Pop(1)

	records, ok := recordsFromValue(ret)
	if !ok {
		return nil, fmt.Errorf("%s: %s must return a table, got %s", d.Name, constant.RecordsFn, ret.Type())
	}

	return records, nil
}

// Close releases the Lua state.
func (d *Definition) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != nil {
		d.state.Close()
		d.state = nil
	}
}
