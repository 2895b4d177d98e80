package errors

import "testing"

func TestValidateTokenAddress(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{
			name: "valid EVM address",
			addr: "0xc00e94cb662c3520282e6f5717214004a7f26888",
		},
		{
			name: "valid solana mint",
			addr: "So11111111111111111111111111111111111111112",
		},
		{
			name:    "empty",
			addr:    "",
			wantErr: true,
		},
		{
			name:    "short hex",
			addr:    "0x1234",
			wantErr: true,
		},
		{
			name:    "non-hex after prefix",
			addr:    "0xZZZe94cb662c3520282e6f5717214004a7f26888",
			wantErr: true,
		},
		{
			name:    "base58 with invalid characters",
			addr:    "O0Il1111111111111111111111111111111111111111",
			wantErr: true,
		},
		{
			name:    "control characters",
			addr:    "0xc00e94cb662c3520282e6f57\x0014004a7f26888",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTokenAddress(tt.addr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTokenAddress(%q) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidAddress) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidAddress)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	if err := ValidateURL("https://api.example.com"); err != nil {
		t.Errorf("ValidateURL(https) = %v", err)
	}
	if err := ValidateURL("ftp://api.example.com"); err == nil {
		t.Error("ValidateURL(ftp) = nil, want error")
	}
	if err := ValidateURL(""); err == nil {
		t.Error("ValidateURL(empty) = nil, want error")
	}
}
