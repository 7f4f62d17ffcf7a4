package transcription

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voclabs/call-insights/internal/events"
	"github.com/voclabs/call-insights/internal/metrics"
)

// MockEngine is a mock implementation of Engine
type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockEngine) Init(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockEngine) Transcribe(ctx context.Context, audioPath string) (RawTranscription, error) {
	args := m.Called(ctx, audioPath)
	return args.Get(0).(RawTranscription), args.Error(1)
}

// MockStorage is a mock implementation of Storage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Fetch(ctx context.Context, locator string) (string, error) {
	args := m.Called(ctx, locator)
	return args.String(0), args.Error(1)
}

// MockPublisher is a mock implementation of Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, env *events.Envelope) error {
	args := m.Called(ctx, env)
	return args.Error(0)
}

func receivedEvent(audioURL string) *events.Envelope {
	return events.New(events.TypeCallReceived, "call-7", &events.CallReceivedPayload{
		CallID:       "call-7",
		CallerID:     "caller-1",
		AgentID:      "agent-1",
		AudioFileURL: audioURL,
		AudioFormat:  "wav",
	}, nil)
}

func newTestProcessor(storage Storage, engine Engine, publisher Publisher) *Processor {
	m, _ := metrics.New()
	return NewProcessor(storage, engine, publisher, ProcessorConfig{
		ServiceName: "transcription-service",
	}, m, zap.NewNop())
}

func tempAudioFile(t *testing.T) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "audio_*.wav")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func TestProcessor_PublishesCausallyLinkedEvent(t *testing.T) {
	storage := new(MockStorage)
	engine := new(MockEngine)
	publisher := new(MockPublisher)

	audioPath := tempAudioFile(t)
	storage.On("Fetch", mock.Anything, "s3://calls/call-7.wav").Return(audioPath, nil)
	engine.On("Name").Return("whisper-base")
	engine.On("Transcribe", mock.Anything, audioPath).Return(RawTranscription{
		Text:     " Hello there. My internet is down. ",
		Language: "en",
		Segments: []RawSegment{
			{Start: 0.0, End: 2.0, Text: " Hello there.", AvgLogprob: -0.5, NoSpeechProb: 0.1},
			{Start: 4.0, End: 7.0, Text: "My internet is down. ", AvgLogprob: -0.5, NoSpeechProb: 0.1},
		},
	}, nil)

	var published *events.Envelope
	publisher.On("Publish", mock.Anything, mock.AnythingOfType("*events.Envelope")).
		Run(func(args mock.Arguments) {
			published = args.Get(1).(*events.Envelope)
		}).
		Return(nil)

	in := receivedEvent("s3://calls/call-7.wav")

	processor := newTestProcessor(storage, engine, publisher)
	processor.ProcessOne(context.Background(), in)

	require.NotNil(t, published)
	assert.Equal(t, events.TypeCallTranscribed, published.EventType)
	assert.Equal(t, in.EventID, published.CausationID)
	assert.Equal(t, in.CorrelationID, published.CorrelationID)
	assert.Equal(t, in.AggregateID, published.AggregateID)
	assert.Equal(t, "whisper-base", published.Metadata["modelName"])

	payload, ok := published.Payload.(*events.CallTranscribedPayload)
	require.True(t, ok)
	assert.Equal(t, "call-7", payload.CallID)
	assert.Equal(t, "Hello there. My internet is down.", payload.Transcription.FullText)
	assert.Equal(t, "en", payload.Transcription.Language)
	assert.Greater(t, payload.Transcription.Confidence, 0.0)

	require.Len(t, payload.Transcription.Segments, 2)
	assert.Equal(t, SpeakerAgent, payload.Transcription.Segments[0].Speaker)
	assert.Equal(t, SpeakerCustomer, payload.Transcription.Segments[1].Speaker)
	assert.Equal(t, "Hello there.", payload.Transcription.Segments[0].Text)

	// The fetched audio file is cleaned up after processing.
	_, err := os.Stat(audioPath)
	assert.True(t, os.IsNotExist(err))
}

func TestProcessor_MissingAudioURLSkips(t *testing.T) {
	storage := new(MockStorage)
	engine := new(MockEngine)
	publisher := new(MockPublisher)

	in := receivedEvent("")

	processor := newTestProcessor(storage, engine, publisher)
	processor.ProcessOne(context.Background(), in)

	storage.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestProcessor_FetchFailureIsSwallowed(t *testing.T) {
	storage := new(MockStorage)
	engine := new(MockEngine)
	publisher := new(MockPublisher)

	storage.On("Fetch", mock.Anything, mock.Anything).Return("", errors.New("object not found"))

	in := receivedEvent("s3://calls/missing.wav")

	processor := newTestProcessor(storage, engine, publisher)

	assert.NotPanics(t, func() {
		processor.ProcessOne(context.Background(), in)
	})
	engine.AssertNotCalled(t, "Transcribe", mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestProcessor_TranscribeFailureIsSwallowed(t *testing.T) {
	storage := new(MockStorage)
	engine := new(MockEngine)
	publisher := new(MockPublisher)

	audioPath := tempAudioFile(t)
	storage.On("Fetch", mock.Anything, mock.Anything).Return(audioPath, nil)
	engine.On("Transcribe", mock.Anything, audioPath).
		Return(RawTranscription{}, errors.New("model server unreachable"))

	in := receivedEvent("s3://calls/call-7.wav")

	processor := newTestProcessor(storage, engine, publisher)
	processor.ProcessOne(context.Background(), in)

	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)

	// The temporary file is removed even when transcription fails.
	_, err := os.Stat(audioPath)
	assert.True(t, os.IsNotExist(err))
}

func TestProcessor_UnexpectedPayloadIgnored(t *testing.T) {
	storage := new(MockStorage)
	engine := new(MockEngine)
	publisher := new(MockPublisher)

	in := events.New(events.TypeCallTranscribed, "call-7", &events.CallTranscribedPayload{CallID: "call-7"}, nil)

	processor := newTestProcessor(storage, engine, publisher)
	processor.ProcessOne(context.Background(), in)

	storage.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}
