package services

import "testing"

func TestIsOrderInquiry(t *testing.T) {
	tests := []struct {
		name        string
		isOrderForm bool
		message     string
		want        bool
	}{
		{
			name:        "explicit flag wins with empty message",
			isOrderForm: true,
			message:     "",
			want:        true,
		},
		{
			name:        "explicit flag wins regardless of content",
			isOrderForm: true,
			message:     "just a question about opening hours",
			want:        true,
		},
		{
			name:    "both markers present",
			message: "Cake: Honey Cake\nDesign Type: Standard\nSize: 8 inch",
			want:    true,
		},
		{
			name:    "product marker alone is not enough",
			message: "Cake: Honey Cake please for Saturday",
			want:    false,
		},
		{
			name:    "design marker alone is not enough",
			message: "Design Type: something with flowers maybe?",
			want:    false,
		},
		{
			name:    "plain contact message",
			message: "Hi, do you deliver to Richmond on weekends?",
			want:    false,
		},
		{
			name:    "empty message without flag",
			message: "",
			want:    false,
		},
		{
			name:    "markers are case sensitive",
			message: "cake: honey\ndesign type: standard",
			want:    false,
		},
		{
			name:    "markers embedded mid-sentence still match",
			message: "My order was Cake: Napoleon and the Design Type: Custom option",
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOrderInquiry(tt.isOrderForm, tt.message); got != tt.want {
				t.Errorf("IsOrderInquiry(%v, %q) = %v, want %v", tt.isOrderForm, tt.message, got, tt.want)
			}
		})
	}
}
