package bot

import "testing"

func TestParseBatchLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    ParsedClient
		wantErr bool
	}{
		{
			name: "línea estándar",
			line: "Victoria +569292929292 21 de cada mes ($3000🇨🇱)",
			want: ParsedClient{Name: "Victoria", Number: "+569292929292", Day: 21, Amount: "$3000", Flag: "🇨🇱"},
		},
		{
			name: "monto en soles",
			line: "Marcelo +51987654321 10 de cada mes (S/50🇵🇪)",
			want: ParsedClient{Name: "Marcelo", Number: "+51987654321", Day: 10, Amount: "S/50", Flag: "🇵🇪"},
		},
		{
			name: "nombre compuesto",
			line: "Juan Pérez +5217771234567 1 de cada mes ($500🇲🇽)",
			want: ParsedClient{Name: "Juan Pérez", Number: "+5217771234567", Day: 1, Amount: "$500", Flag: "🇲🇽"},
		},
		{
			name: "espacios alrededor",
			line: "  Ana +5491122334455 15 de cada mes ( $200 🇦🇷 )  ",
			want: ParsedClient{Name: "Ana", Number: "+5491122334455", Day: 15, Amount: "$200", Flag: "🇦🇷"},
		},
		{name: "sin número", line: "Victoria 21 de cada mes ($3000🇨🇱)", wantErr: true},
		{name: "número sin prefijo", line: "Victoria 569292929292 21 de cada mes ($3000🇨🇱)", wantErr: true},
		{name: "día fuera de rango", line: "Victoria +569292929292 32 de cada mes ($3000🇨🇱)", wantErr: true},
		{name: "día cero", line: "Victoria +569292929292 0 de cada mes ($3000🇨🇱)", wantErr: true},
		{name: "sin bandera", line: "Victoria +569292929292 21 de cada mes ($3000)", wantErr: true},
		{name: "sin paréntesis", line: "Victoria +569292929292 21 de cada mes $3000🇨🇱", wantErr: true},
		{name: "vacía", line: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBatchLine(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseBatchLine(%q) = %+v, want error", tt.line, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBatchLine(%q): %v", tt.line, err)
			}
			if got != tt.want {
				t.Errorf("ParseBatchLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}
