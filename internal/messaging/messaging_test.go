package messaging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"photo_studio/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, channel Channel, to, body string) error {
	args := m.Called(ctx, channel, to, body)
	return args.Error(0)
}

type fakeCreator struct {
	params []*openapi.CreateMessageParams
	err    error
}

func (f *fakeCreator) CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &openapi.ApiV2010Message{Sid: &sid}, nil
}

func TestNotifier_Deliver(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		to          string
		mockSetup   func(s *MockSender)
		wantChannel Channel
		wantErr     bool
	}{
		{
			name: "whatsapp accepted",
			to:   "90 12 34 56",
			mockSetup: func(s *MockSender) {
				s.On("Send", ctx, ChannelWhatsApp, "+22890123456", "hello").Return(nil).Once()
			},
			wantChannel: ChannelWhatsApp,
		},
		{
			name: "falls back to sms",
			to:   "+228 90-12-34-56",
			mockSetup: func(s *MockSender) {
				s.On("Send", ctx, ChannelWhatsApp, "+22890123456", "hello").Return(errors.New("not on whatsapp")).Once()
				s.On("Send", ctx, ChannelSMS, "+22890123456", "hello").Return(nil).Once()
			},
			wantChannel: ChannelSMS,
		},
		{
			name: "both channels fail",
			to:   "90123456",
			mockSetup: func(s *MockSender) {
				s.On("Send", ctx, ChannelWhatsApp, "+22890123456", "hello").Return(ErrChannelUnavailable).Once()
				s.On("Send", ctx, ChannelSMS, "+22890123456", "hello").Return(errors.New("twilio down")).Once()
			},
			wantErr: true,
		},
		{
			name:      "invalid recipient",
			to:        "12",
			mockSetup: func(s *MockSender) {},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := new(MockSender)
			tt.mockSetup(sender)

			n := NewNotifier(slog.Default(), sender, "+228", "Studio", "")

			channel, err := n.Deliver(ctx, tt.to, "hello")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantChannel, channel)
			}

			sender.AssertExpectations(t)
		})
	}
}

func TestNotifier_BookingAlert_NoStudioPhone(t *testing.T) {
	sender := new(MockSender)
	n := NewNotifier(slog.Default(), sender, "+228", "Studio", "")

	err := n.BookingAlert(context.Background(), models.Booking{BookingNumber: "BK-2026-0001"})
	assert.NoError(t, err)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNotifier_SendOTP_Body(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything, ChannelWhatsApp, "+22890123456", mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, "Studio") &&
			strings.Contains(body, "123456") &&
			strings.Contains(body, "10 minutes")
	})).Return(nil).Once()

	n := NewNotifier(slog.Default(), sender, "+228", "Studio", "")

	channel, err := n.SendOTP(context.Background(), "90123456", "123456", 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, ChannelWhatsApp, channel)
	sender.AssertExpectations(t)
}

func TestTwilioSender_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("whatsapp prefixes both numbers", func(t *testing.T) {
		api := &fakeCreator{}
		s := newTwilioSender(slog.Default(), api, "+15550001", "+15550002")

		require.NoError(t, s.Send(ctx, ChannelWhatsApp, "+22890123456", "hi"))
		require.Len(t, api.params, 1)
		assert.Equal(t, "whatsapp:+22890123456", *api.params[0].To)
		assert.Equal(t, "whatsapp:+15550002", *api.params[0].From)
		assert.Equal(t, "hi", *api.params[0].Body)
	})

	t.Run("sms uses plain numbers", func(t *testing.T) {
		api := &fakeCreator{}
		s := newTwilioSender(slog.Default(), api, "+15550001", "")

		require.NoError(t, s.Send(ctx, ChannelSMS, "+22890123456", "hi"))
		assert.Equal(t, "+22890123456", *api.params[0].To)
		assert.Equal(t, "+15550001", *api.params[0].From)
	})

	t.Run("unconfigured channel", func(t *testing.T) {
		api := &fakeCreator{}
		s := newTwilioSender(slog.Default(), api, "+15550001", "")

		err := s.Send(ctx, ChannelWhatsApp, "+22890123456", "hi")
		assert.ErrorIs(t, err, ErrChannelUnavailable)
		assert.Empty(t, api.params)
	})

	t.Run("provider error", func(t *testing.T) {
		api := &fakeCreator{err: errors.New("21211 invalid 'To'")}
		s := newTwilioSender(slog.Default(), api, "+15550001", "")

		assert.Error(t, s.Send(ctx, ChannelSMS, "+22890123456", "hi"))
	})
}

func TestServiceLabel(t *testing.T) {
	assert.Equal(t, "Wedding", ServiceLabel("wedding"))
	assert.Equal(t, "Corporate Event", ServiceLabel("corporate_event"))
}

func TestLogSender_Send(t *testing.T) {
	ctx := context.Background()
	body := "Your verification code is 482913"

	tests := []struct {
		name     string
		showBody bool
		want     string
		wantNot  string
	}{
		{name: "local shows the body", showBody: true, want: "482913"},
		{name: "body is redacted elsewhere", showBody: false, want: "body_len=", wantNot: "482913"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := NewLogSender(slog.New(slog.NewTextHandler(&buf, nil)), tt.showBody)

			require.NoError(t, s.Send(ctx, ChannelSMS, "+22890123456", body))

			assert.Contains(t, buf.String(), tt.want)
			if tt.wantNot != "" {
				assert.NotContains(t, buf.String(), tt.wantNot)
			}
		})
	}
}
