package http

import (
	"fmt"
	"net/url"

	"github.com/oapi-codegen/runtime"

	"github.com/verleihernix/math-visualizer/pkg/view"
)

// MaxDimension bounds the width and height of rendered plots.
const MaxDimension = 4096

// MaxExpressionSize bounds the length of a single expression.
const MaxExpressionSize = 4096

// MaxExpressions bounds how many functions one plot request may draw.
const MaxExpressions = 16

type viewParams struct {
	Width   *int
	Height  *int
	Scale   *float32
	OffsetX *float32
	OffsetY *float32
}

func bindView(q url.Values) (view.Transform, error) {
	var p viewParams
	for _, b := range []struct {
		name string
		dest any
	}{
		{"width", &p.Width},
		{"height", &p.Height},
		{"scale", &p.Scale},
		{"offset_x", &p.OffsetX},
		{"offset_y", &p.OffsetY},
	} {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return view.Transform{}, err
		}
	}

	v := view.Default()
	if p.Width != nil {
		v.Width = float32(*p.Width)
	}
	if p.Height != nil {
		v.Height = float32(*p.Height)
	}
	if p.Scale != nil {
		v.Scale = *p.Scale
	}
	if p.OffsetX != nil {
		v.OffsetX = *p.OffsetX
	}
	if p.OffsetY != nil {
		v.OffsetY = *p.OffsetY
	}

	if v.Width > MaxDimension || v.Height > MaxDimension {
		return v, fmt.Errorf("size %vx%v exceeds %d", v.Width, v.Height, MaxDimension)
	}
	if err := v.Validate(); err != nil {
		return v, err
	}
	if v.Scale != view.ClampScale(v.Scale) {
		return v, fmt.Errorf("scale must be within [%v, %v]", view.MinScale, view.MaxScale)
	}
	return v, nil
}

func bindExpr(q url.Values) (string, error) {
	var src string
	if err := runtime.BindQueryParameter("form", true, true, "expr", q, &src); err != nil {
		return "", err
	}
	if len(src) > MaxExpressionSize {
		return "", fmt.Errorf("expression longer than %d bytes", MaxExpressionSize)
	}
	return src, nil
}

func bindPlot(q url.Values) (exprs, colors []string, err error) {
	if err := runtime.BindQueryParameter("form", true, true, "expr", q, &exprs); err != nil {
		return nil, nil, err
	}
	var optColors *[]string
	if err := runtime.BindQueryParameter("form", true, false, "color", q, &optColors); err != nil {
		return nil, nil, err
	}
	if optColors != nil {
		colors = *optColors
	}
	if len(exprs) > MaxExpressions {
		return nil, nil, fmt.Errorf("at most %d expressions per plot", MaxExpressions)
	}
	for _, e := range exprs {
		if len(e) > MaxExpressionSize {
			return nil, nil, fmt.Errorf("expression longer than %d bytes", MaxExpressionSize)
		}
	}
	if len(colors) > len(exprs) {
		return nil, nil, fmt.Errorf("%d colors given for %d expressions", len(colors), len(exprs))
	}
	return exprs, colors, nil
}

func bindRequired(q url.Values, name string, dest any) error {
	return runtime.BindQueryParameter("form", true, true, name, q, dest)
}

// bindOptional expects dest to be a pointer to a pointer.
func bindOptional(q url.Values, name string, dest any) error {
	return runtime.BindQueryParameter("form", true, false, name, q, dest)
}
