package health_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/jonwraymond/cmdchk/config"
	"github.com/jonwraymond/cmdchk/health"
)

func ExampleEngine_Evaluate() {
	checks := []config.Check{
		{Command: "true"},
		{Command: "exit 3", Accepted: []int{0, 3}},
	}
	engine := health.NewEngine(checks, health.ShellRunner{}, nil)

	v := engine.Evaluate(context.Background())
	fmt.Println(v.Status)
	// Output:
	// healthy
}

func ExampleVerdict_Err() {
	runner := health.RunnerFunc(func(ctx context.Context, command string) (int, []byte, error) {
		if command == "pgrep nginx" {
			return 1, nil, nil
		}
		return 0, nil, nil
	})
	checks := []config.Check{{Command: "true"}, {Command: "pgrep nginx"}, {Command: "never runs"}}

	v := health.NewEngine(checks, runner, nil).Evaluate(context.Background())
	fmt.Println(v.Status)
	fmt.Println(v.Err())
	fmt.Println(len(v.Results))
	// Output:
	// unhealthy
	// health: check failed: "pgrep nginx" exited 1
	// 2
}

func ExampleStatusHandler() {
	engine := health.NewEngine(nil, health.ShellRunner{}, nil)
	handler := health.StatusHandler(engine, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	fmt.Println(rec.Code)
	fmt.Printf("%q\n", rec.Body.String())
	// Output:
	// 200
	// "All checks succeeded.\r\n\r\n"
}
