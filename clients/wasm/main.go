//go:build js && wasm

// textmark WASM — Client-side compositor.
// Compiled with: GOOS=js GOARCH=wasm go build -o textmark.wasm ./clients/wasm/
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"math/rand/v2"
	"sync"
	"syscall/js"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/xob0t/textmark/pkg/compositor"
	"github.com/xob0t/textmark/pkg/generator"
	"github.com/xob0t/textmark/pkg/session"
)

// One session per page.
var (
	mu   sync.Mutex
	sess *session.Session
)

func main() {
	fmt.Println("textmark WASM loaded")

	// The browser has no filesystem fonts: start on Go Regular.
	fm, err := compositor.NewFontManagerFromBytes("goregular", goregular.TTF)
	if err != nil {
		fmt.Println("textmark: embedded font:", err)
		return
	}
	sess = session.New(session.WithFonts(fm))

	// Register JS-callable functions.
	js.Global().Set("goGenerate", js.FuncOf(generate))
	js.Global().Set("goAddWatermark", js.FuncOf(addWatermark))
	js.Global().Set("goReset", js.FuncOf(reset))
	js.Global().Set("goPreview", js.FuncOf(preview))
	js.Global().Set("goImage", js.FuncOf(fullImage))
	js.Global().Set("goRegisterFont", js.FuncOf(registerFont))
	js.Global().Set("goReady", js.ValueOf(true))

	// Block forever (WASM must not exit).
	select {}
}

// jsInputs mirrors the page's control values.
type jsInputs struct {
	Text     string  `json:"text"`
	TextSize int     `json:"textSize"`
	Density  float64 `json:"density"`
	Seed     uint64  `json:"seed"`
}

func parseInputs(s string) (session.Inputs, error) {
	in := session.DefaultInputs()
	if s == "" || s == "null" {
		return in, nil
	}
	var raw jsInputs
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return in, fmt.Errorf("parse inputs: %w", err)
	}
	in.Text = raw.Text
	if raw.TextSize != 0 {
		in.TextSize = raw.TextSize
	}
	in.Density = raw.Density
	in.Seed = raw.Seed
	if in.Seed == 0 {
		in.Seed = rand.Uint64()
	}
	return in, nil
}

// goGenerate(inputsJSON) — render and return the full-size image as base64 PNG.
func generate(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("error: need inputsJSON")
	}
	in, err := parseInputs(args[0].String())
	if err != nil {
		return jsError(err)
	}
	return run(session.Generate{Inputs: in})
}

// goAddWatermark(text, inputsJSON) — append a watermark and regenerate.
func addWatermark(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("error: need text, inputsJSON")
	}
	in, err := parseInputs(args[1].String())
	if err != nil {
		return jsError(err)
	}
	return run(session.AddWatermark{Inputs: in, Watermark: args[0].String()})
}

// goReset() — clear everything and return the blank canvas.
func reset(this js.Value, args []js.Value) interface{} {
	return run(session.Reset{})
}

// goPreview(width, height) — the current image stretched to the viewport.
func preview(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("error: need width, height")
	}
	return run(session.Preview{Width: args[0].Int(), Height: args[1].Int()})
}

// goImage() — the generated image at full size, for download. Empty before generation.
func fullImage(this js.Value, args []js.Value) interface{} {
	mu.Lock()
	img := sess.Image()
	mu.Unlock()
	if img == nil {
		return js.ValueOf("")
	}
	return encode(img)
}

// goRegisterFont(base64Data, name) — use an uploaded font for later generations.
func registerFont(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("error: need base64Data")
	}
	name := "uploaded"
	if len(args) > 1 {
		name = args[1].String()
	}

	data, err := base64.StdEncoding.DecodeString(args[0].String())
	if err != nil {
		return js.ValueOf("error: invalid base64: " + err.Error())
	}
	fm, err := compositor.NewFontManagerFromBytes(name, data)
	if err != nil {
		return jsError(err)
	}

	mu.Lock()
	sess.SetFonts(fm)
	mu.Unlock()
	return js.ValueOf("ok")
}

func run(cmd session.Command) interface{} {
	mu.Lock()
	res, err := sess.Dispatch(cmd)
	mu.Unlock()
	if err != nil {
		return jsError(err)
	}
	return encode(res.Image)
}

func encode(img image.Image) interface{} {
	var buf bytes.Buffer
	if err := generator.GenerateToWriter(&buf, ".png", generator.Config{Image: img}); err != nil {
		return jsError(err)
	}
	return js.ValueOf(base64.StdEncoding.EncodeToString(buf.Bytes()))
}

func jsError(err error) js.Value {
	return js.ValueOf("error: " + err.Error())
}
