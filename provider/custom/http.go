package custom

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/cinesrc/cinesrc/network"
	lua "github.com/yuin/gopher-lua"
)

const maxBody = 4 << 20

var errNoContext = errors.New("http is only available while Records runs")

// registerHTTP exposes the fingerprinted client to scripts as http_tls:
//
//	http_tls.get(url [, headers])         -> body
//	http_tls.request({method, url, headers, body}) -> {status, body}
func registerHTTP(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "get", L.NewFunction(httpGet))
	L.SetField(mod, "request", L.NewFunction(httpRequest))
	L.SetGlobal("http_tls", mod)
}

func httpGet(L *lua.LState) int {
	url := L.CheckString(1)
	headers := tableToHeaders(L.OptTable(2, nil))

	status, body, err := do(L, http.MethodGet, url, headers, "")
	if err != nil {
		L.RaiseError("http_tls.get: %s", err.Error())
		return 0
	}
	if status >= 400 {
		L.RaiseError("http_tls.get: status %d", status)
		return 0
	}

	L.Push(lua.LString(body))
	return 1
}

func httpRequest(L *lua.LState) int {
	opts := L.CheckTable(1)

	url := getString(opts, "url")
	if url == "" {
		L.RaiseError("http_tls.request: url is required")
		return 0
	}

	method := strings.ToUpper(getString(opts, "method"))
	if method == "" {
		method = http.MethodGet
	}

	headers, _ := opts.RawGetString("headers").(*lua.LTable)
	status, body, err := do(L, method, url, tableToHeaders(headers), getString(opts, "body"))
	if err != nil {
		L.RaiseError("http_tls.request: %s", err.Error())
		return 0
	}

	result := L.NewTable()
	L.SetField(result, "status", lua.LNumber(status))
	L.SetField(result, "body", lua.LString(body))
	L.Push(result)
	return 1
}

func tableToHeaders(table *lua.LTable) map[string]string {
	headers := make(map[string]string)
	if table == nil {
		return headers
	}
	table.ForEach(func(k, v lua.LValue) {
		headers[k.String()] = v.String()
	})
	return headers
}

func do(L *lua.LState, method, url string, headers map[string]string, body string) (int, string, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	ctx := L.Context()
	if ctx == nil {
		return 0, "", errNoContext
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, "", err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := network.TLSClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return resp.StatusCode, "", err
	}

	return resp.StatusCode, string(b), nil
}
