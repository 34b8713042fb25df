package custom

import (
	"github.com/cinesrc/cinesrc/content"
	lua "github.com/yuin/gopher-lua"
)

func getString(table *lua.LTable, key string) string {
	val := table.RawGetString(key)
	if val.Type() == lua.LTString {
		return val.String()
	}
	return ""
}

func getStringMap(table *lua.LTable, key string) map[string]string {
	val, ok := table.RawGetString(key).(*lua.LTable)
	if !ok {
		return nil
	}

	out := make(map[string]string)
	val.ForEach(func(k, v lua.LValue) {
		if k.Type() == lua.LTString {
			out[k.String()] = v.String()
		}
	})
	return out
}

// toGo converts a Lua value into the JSON-like shapes the validator expects.
// A table with a non-empty array part becomes a []any, any other table a map.
// Functions and userdata become nil, so the validator rejects them by field.
func toGo(value lua.LValue) any {
	switch v := value.(type) {
	case lua.LString:
		return string(v)
	case lua.LNumber:
		return float64(v)
	case lua.LBool:
		return bool(v)
	case *lua.LTable:
		if n := v.MaxN(); n > 0 {
			list := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				list = append(list, toGo(v.RawGetInt(i)))
			}
			return list
		}

		m := make(map[string]any)
		v.ForEach(func(k, item lua.LValue) {
			if k.Type() == lua.LTString {
				m[k.String()] = toGo(item)
			}
		})
		return m
	default:
		return nil
	}
}

// recordsFromValue converts the value returned by Records into raw records.
// Entries that are not tables are kept as nil records and rejected later.
func recordsFromValue(value lua.LValue) ([]map[string]any, bool) {
	table, ok := value.(*lua.LTable)
	if !ok {
		return nil, value == lua.LNil
	}

	records := make([]map[string]any, 0, table.MaxN())
	for i := 1; i <= table.MaxN(); i++ {
		item, isMap := toGo(table.RawGetInt(i)).(map[string]any)
		if !isMap {
			item = nil
		}
		records = append(records, item)
	}

	return records, true
}

func contentToTable(L *lua.LState, identity content.Identity) *lua.LTable {
	table := L.NewTable()
	table.RawSetString("kind", lua.LString(identity.Kind))
	table.RawSetString("id", lua.LNumber(identity.ID))
	table.RawSetString("key", lua.LString(identity.Key()))
	if identity.IsSeries() {
		table.RawSetString("season", lua.LNumber(identity.Season))
		table.RawSetString("episode", lua.LNumber(identity.Episode))
	}
	return table
}
