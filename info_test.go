package devpulse

import (
	"testing"
)

func TestDefaultInfoExtractor(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    Info
		wantErr bool
	}{
		{"version and env", `{"version":"1.2.0","env":"dev"}`, Info{Version: "1.2.0", Environment: "dev"}, false},
		{"extra fields ignored", `{"message":"hi","version":"2.0","env":"staging"}`, Info{Version: "2.0", Environment: "staging"}, false},
		{"missing env", `{"version":"1.0"}`, Info{Version: "1.0"}, false},
		{"empty object", `{}`, Info{}, false},
		{"numeric version", `{"version":3,"env":"prod"}`, Info{Version: "3", Environment: "prod"}, false},
		{"float version", `{"version":1.5}`, Info{Version: "1.5"}, false},
		{"bool env", `{"env":true}`, Info{Environment: "true"}, false},
		{"null fields", `{"version":null,"env":null}`, Info{}, false},
		{"object field", `{"version":{"major":1}}`, Info{}, false},
		{"invalid JSON", `not json`, Info{}, true},
		{"empty body", ``, Info{}, true},
		{"null body", `null`, Info{}, true},
		{"array body", `[1,2]`, Info{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DefaultInfoExtractor([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestJSONInfoExtractor_NestedPaths(t *testing.T) {
	extract := JSONInfoExtractor("build.version", "meta.env.name")

	got, err := extract([]byte(`{"build":{"version":"4.1.0"},"meta":{"env":{"name":"qa"}}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Version != "4.1.0" || got.Environment != "qa" {
		t.Errorf("got %+v", got)
	}

	got, err = extract([]byte(`{"build":"flat"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Version != "" {
		t.Errorf("Version = %q, want empty when path crosses a non-object", got.Version)
	}
}

func TestOrPlaceholder(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", Placeholder},
		{"   ", Placeholder},
		{"dev", "dev"},
		{"1.2.0", "1.2.0"},
	}
	for _, tt := range tests {
		if got := orPlaceholder(tt.in); got != tt.want {
			t.Errorf("orPlaceholder(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
