package webapp

import (
	"encoding/json"
	"fmt"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// apiResponse is what a fetch hands back to the component that started it
type apiResponse struct {
	Status int
	Body   []byte
	Err    error
}

// OK reports a 2xx answer with no network error
func (r apiResponse) OK() bool {
	return r.Err == nil && r.Status >= 200 && r.Status < 300
}

// Decode unmarshals the body into v
func (r apiResponse) Decode(v any) error {
	if r.Err != nil {
		return r.Err
	}
	if !r.OK() {
		return apiFailure(r.Status, r.Body)
	}
	return json.Unmarshal(r.Body, v)
}

// apiFailure turns an error answer of the API into an error
func apiFailure(status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return fmt.Errorf("request failed with status %d: %s", status, payload.Error)
	}
	return fmt.Errorf("request failed with status: %d", status)
}

// fetchAPI calls the browser fetch and dispatches the answer back on the UI goroutine
func fetchAPI(ctx app.Context, method, url string, done func(ctx app.Context, res apiResponse)) {
	if app.IsServer {
		return
	}
	ctx.Async(func() {
		res := app.Window().Call("fetch", url, map[string]interface{}{
			"method": method,
		})

		res.Call("then", app.FuncOf(func(this app.Value, args []app.Value) any {
			if len(args) == 0 {
				return nil
			}
			response := args[0]
			status := response.Get("status").Int()

			response.Call("text").Call("then", app.FuncOf(func(this app.Value, args []app.Value) any {
				var body []byte
				if len(args) > 0 {
					body = []byte(args[0].String())
				}
				ctx.Dispatch(func(ctx app.Context) {
					done(ctx, apiResponse{Status: status, Body: body})
				})
				return nil
			}))
			return nil
		})).Call("catch", app.FuncOf(func(this app.Value, args []app.Value) any {
			ctx.Dispatch(func(ctx app.Context) {
				done(ctx, apiResponse{Err: fmt.Errorf("network error: could not connect to server")})
			})
			return nil
		}))
	})
}
