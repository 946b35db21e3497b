package ctx

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/mapstructure"
)

// jsoniterEscape is the jsoniter configuration used whenever HTML-escaping of
// JSON output is requested (the default); see DefaultContext.JSON.
var jsoniterEscape = jsoniter.ConfigCompatibleWithStandardLibrary

// useStandardJSONForTests, when true, routes BindJSON through encoding/json
// instead of jsoniter. jsoniter and encoding/json agree on nearly every
// input, but differ on a handful of corner cases (e.g. number overflow
// behavior); the test suite pins encoding/json so assertions describe
// standard library semantics rather than jsoniter's.
var useStandardJSONForTests = false

// setTestCompatibilityMode toggles useStandardJSONForTests. Called from the
// init function in ctx/bind_test.go, so only test builds enable it.
func setTestCompatibilityMode(standard bool) {
	useStandardJSONForTests = standard
}

// BindJSONOptions configures the Bind* family of methods on Ctx.
//
// MaxBodyBytes limits the number of bytes read from the request body before
// binding fails with an error (0 means use the default of 10MiB). DisallowUnknownFields
// rejects a JSON payload containing a field that does not exist in the
// destination struct, mirroring json.Decoder.DisallowUnknownFields.
type BindJSONOptions struct {
	MaxBodyBytes          int64
	DisallowUnknownFields bool
	TagName               string // struct tag used by BindMap/BindForm/BindQuery/BindPath; defaults to "json"
}

const defaultMaxBodyBytes = 10 << 20 // 10MiB

func mergeBindOptions(opts []BindJSONOptions) BindJSONOptions {
	var o BindJSONOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = defaultMaxBodyBytes
	}
	if o.TagName == "" {
		o.TagName = "json"
	}
	return o
}

// BindJSON decodes the request body as JSON into v.
//
// Example:
//
//	var payload struct {
//		Name string `json:"name"`
//	}
//	if err := c.BindJSON(&payload); err != nil {
//		return c.Status(http.StatusBadRequest).JSON(map[string]string{"error": err.Error()})
//	}
func (c *DefaultContext) BindJSON(v any, opts ...BindJSONOptions) error {
	o := mergeBindOptions(opts)

	body, err := c.bodyReader()
	if err != nil {
		return err
	}
	defer body.Close()

	limited := io.LimitReader(body, o.MaxBodyBytes+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return err
	}
	if int64(len(raw)) > o.MaxBodyBytes {
		return errors.New("ctx: request body exceeds MaxBodyBytes")
	}
	if len(raw) == 0 {
		return errEmptyBody
	}

	if useStandardJSONForTests {
		dec := json.NewDecoder(strings.NewReader(string(raw)))
		if o.DisallowUnknownFields {
			dec.DisallowUnknownFields()
		}
		return dec.Decode(v)
	}

	if o.DisallowUnknownFields {
		dec := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(strings.NewReader(string(raw)))
		dec.DisallowUnknownFields()
		return dec.Decode(v)
	}
	return jsoniterFast.Unmarshal(raw, v)
}

// bodyReader returns the request body for either transport, always non-nil.
func (c *DefaultContext) bodyReader() (io.ReadCloser, error) {
	if c.isFastHTTP() {
		return io.NopCloser(strings.NewReader(string(c.fctx.PostBody()))), nil
	}
	if c.r.Body == nil {
		return io.NopCloser(strings.NewReader("")), nil
	}
	return c.r.Body, nil
}

// BindMap binds a generic map (typically gathered from query/path/form
// values) into v using github.com/mitchellh/mapstructure, honoring
// opts[0].TagName as the struct tag mapstructure reads (default "json").
//
// Example:
//
//	m := map[string]any{"id": "42", "name": "ada"}
//	var payload struct {
//		ID   int    `json:"id"`
//		Name string `json:"name"`
//	}
//	_ = c.BindMap(&payload, m)
func (c *DefaultContext) BindMap(v any, m map[string]any, opts ...BindJSONOptions) error {
	o := mergeBindOptions(opts)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           v,
		TagName:          o.TagName,
		WeaklyTypedInput: true,
		ErrorUnused:      o.DisallowUnknownFields,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(m)
}

// BindForm parses the request body as application/x-www-form-urlencoded or
// multipart/form-data and binds the collected fields into v.
//
// Example:
//
//	var payload struct {
//		Email string `json:"email"`
//	}
//	_ = c.BindForm(&payload)
func (c *DefaultContext) BindForm(v any, opts ...BindJSONOptions) error {
	values, err := c.formValues()
	if err != nil {
		return err
	}
	return c.BindMap(v, values, opts...)
}

// formValues parses the request's form body (net/http transport only;
// fasthttp requests use fctx.PostArgs() directly since *http.Request is
// unavailable) into a map[string]any suitable for BindMap.
func (c *DefaultContext) formValues() (map[string]any, error) {
	out := make(map[string]any)
	if c.isFastHTTP() {
		c.fctx.PostArgs().VisitAll(func(key, value []byte) {
			out[string(key)] = string(value)
		})
		if form, err := c.fctx.MultipartForm(); err == nil && form != nil {
			addMultipartValues(out, form)
		}
		return out, nil
	}

	if err := c.r.ParseMultipartForm(32 << 20); err != nil {
		if err != http.ErrNotMultipart {
			return nil, err
		}
		if err := c.r.ParseForm(); err != nil {
			return nil, err
		}
	}
	for k, vals := range c.r.Form {
		if len(vals) == 0 {
			continue
		}
		if len(vals) == 1 {
			out[k] = vals[0]
		} else {
			out[k] = vals
		}
	}
	return out, nil
}

func addMultipartValues(out map[string]any, form *multipart.Form) {
	for k, vals := range form.Value {
		if len(vals) == 0 {
			continue
		}
		if len(vals) == 1 {
			out[k] = vals[0]
		} else {
			out[k] = vals
		}
	}
}

// BindQuery collects query string parameters and binds them into v.
//
// Example:
//
//	var q struct {
//		Page int `json:"page"`
//	}
//	_ = c.BindQuery(&q)
func (c *DefaultContext) BindQuery(v any, opts ...BindJSONOptions) error {
	out := make(map[string]any)
	if c.isFastHTTP() {
		c.fctx.QueryArgs().VisitAll(func(key, value []byte) {
			out[string(key)] = string(value)
		})
	} else {
		for k, vals := range c.r.URL.Query() {
			if len(vals) == 0 {
				continue
			}
			if len(vals) == 1 {
				out[k] = vals[0]
			} else {
				out[k] = vals
			}
		}
	}
	return c.BindMap(v, out, opts...)
}

// BindPath collects this request's path parameters and binds them into v.
//
// Example:
//
//	// Route: /users/:id
//	var p struct {
//		ID int `json:"id"`
//	}
//	_ = c.BindPath(&p)
func (c *DefaultContext) BindPath(v any, opts ...BindJSONOptions) error {
	out := make(map[string]any)
	if c.paramSlice == nil {
		for i := uint8(0); i < c.paramCount; i++ {
			out[c.params[i].Key] = c.params[i].Value
		}
	} else {
		for _, p := range c.paramSlice {
			out[p.Key] = p.Value
		}
	}
	return c.BindMap(v, out, opts...)
}

// BindAny binds from path parameters, then the request body (JSON or form,
// whichever the Content-Type indicates), then query parameters, each layer
// overwriting fields the previous layer already set — giving path parameters
// the lowest priority, the body a higher one, and query parameters the
// highest.
//
// Example:
//
//	// Route: /users/:id, body: {"name":"ada"}
//	var payload struct {
//		ID   int    `json:"id"`
//		Name string `json:"name"`
//	}
//	_ = c.BindAny(&payload)
func (c *DefaultContext) BindAny(v any, opts ...BindJSONOptions) error {
	if err := c.BindPath(v, opts...); err != nil {
		return err
	}

	ct := c.contentType()
	switch {
	case strings.HasPrefix(ct, "application/json"):
		if err := c.BindJSON(v, opts...); err != nil && !errors.Is(err, errEmptyBody) {
			return err
		}
	case strings.HasPrefix(ct, "multipart/form-data"), strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
		if err := c.BindForm(v, opts...); err != nil {
			return err
		}
	}

	if err := c.BindQuery(v, opts...); err != nil {
		return err
	}
	return nil
}

var errEmptyBody = errors.New("ctx: empty request body")

func (c *DefaultContext) contentType() string {
	if c.isFastHTTP() {
		return string(c.fctx.Request.Header.ContentType())
	}
	return c.r.Header.Get("Content-Type")
}
