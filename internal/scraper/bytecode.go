// Package scraper compiles and runs Lua provider scripts.
package scraper

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/cinesrc/cinesrc/filesystem"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

var bytecodeCache sync.Map

// Digest returns the sha256 of a script's bytes.
func Digest(script []byte) string {
	sum := sha256.Sum256(script)
	return hex.EncodeToString(sum[:])
}

// Compile parses and compiles script, reusing a prototype compiled from
// identical bytes earlier in the process.
func Compile(name string, script []byte) (*lua.FunctionProto, error) {
	digest := Digest(script)
	if cached, ok := bytecodeCache.Load(digest); ok {
		return cached.(*lua.FunctionProto), nil
	}

	chunk, err := parse.Parse(bytes.NewReader(script), name)
	if err != nil {
		return nil, err
	}

	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, err
	}

	bytecodeCache.Store(digest, proto)
	return proto, nil
}

// PreCompileAndLoad reads the script at path through the filesystem backend
// and runs its top level in L. It returns the digest of the script.
func PreCompileAndLoad(L *lua.LState, path string) (string, error) {
	script, err := filesystem.API().ReadFile(path)
	if err != nil {
		return "", err
	}

	proto, err := Compile(path, script)
	if err != nil {
		return "", err
	}

	L.Push(L.NewFunctionFromProto(proto))
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return "", err
	}

	return Digest(script), nil
}
