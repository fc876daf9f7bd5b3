package storage

import (
	"bytes"
	"testing"

	"gopkg.in/yaml.v2"
)

func TestKVConfig_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr bool
		wantMax int64
	}{
		{
			name: "valid/canonical case",
			config: `storageDir: ./tempTestDir3012705204
maxRecordSize: "1KiB"`,
			wantErr: false,
			wantMax: 1024,
		},
		{
			name:    "no max record size falls back to the default",
			config:  `storageDir: ./tempTestDir3012705204`,
			wantErr: false,
			wantMax: DefaultMaxValueSize,
		},
		{
			name: "max record size not a byte count",
			config: `storageDir: ./tempTestDir3012705204
maxRecordSize: "one kilobyte"`,
			wantErr: true,
		},
		{
			name:    "no storage path",
			config:  `maxRecordSize: "1KiB"`,
			wantErr: true,
		},
		{
			name:    "not a YAML object",
			config:  `[]`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := bytes.NewBuffer([]byte(tt.config))
			dec := yaml.NewDecoder(buf)
			var c KVConfig
			err := dec.Decode(&c)
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr = %v but got %v with err %v", tt.wantErr, err != nil, err)
			}
			if err == nil && c.MaxValueSize != tt.wantMax {
				t.Errorf("wanted max value size %v but got %v", tt.wantMax, c.MaxValueSize)
			}
		})
	}
}
