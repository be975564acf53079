package maxAPI

import (
	"context"
	"net/http"
	"sync"
	"time"

	maxbot "github.com/max-messenger/max-bot-api-client-go"
	"github.com/max-messenger/max-bot-api-client-go/schemes"

	"classBook/config"
	"classBook/database"
	"classBook/logger"
	"classBook/services"
)

// schoolZone is the zone "today" is taken in when attendance is recorded.
var schoolZone = time.FixedZone("KST", 9*60*60)

type Bot struct {
	MaxBot            *schemes.BotInfo
	logger            *logger.Logger
	MaxAPI            *maxbot.Api
	pending           map[int64]pendingInput
	processedMessages map[string]bool
	lastMessageID     map[int64]string
	mu                sync.Mutex

	gateway  *database.Gateway
	reports  *services.ReportBuilder
	importer *services.StudentImporter
	recorder *services.AttendanceRecorder

	httpClient *http.Client
	now        func() time.Time
}

func NewBot(ctx context.Context, cfg *config.MaxConfig, log *logger.Logger, gw *database.Gateway) (*Bot, error) {
	api, err := maxbot.New(cfg.Token)
	if err != nil && err.Error() != "" {
		log.Errorf("failed to create max api: %v", err)
		return nil, err
	}

	maxBot, err := api.Bots.GetBot(ctx)
	if err != nil && err.Error() != "" {
		log.Errorf("failed to get bot info: %v", err)
		return nil, err
	}

	return newBot(api, maxBot, log, gw), nil
}

func newBot(api *maxbot.Api, info *schemes.BotInfo, log *logger.Logger, gw *database.Gateway) *Bot {
	return &Bot{
		MaxBot:            info,
		logger:            log,
		MaxAPI:            api,
		pending:           make(map[int64]pendingInput),
		processedMessages: make(map[string]bool),
		lastMessageID:     make(map[int64]string),

		gateway:  gw,
		reports:  services.NewReportBuilder(gw.Schedule, gw.Attendance, log),
		importer: services.NewStudentImporter(gw.Students),
		recorder: services.NewAttendanceRecorder(gw.Students, gw.Attendance),

		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

// Start handles updates until ctx is done. It returns immediately.
func (b *Bot) Start(ctx context.Context) {
	go func() {
		for upd := range b.MaxAPI.GetUpdates(ctx) {
			b.logger.Debugf("Received update type: %T", upd)

			switch u := upd.(type) {
			case *schemes.BotStartedUpdate:
				b.handleBotStarted(ctx, u)
			case *schemes.MessageCreatedUpdate:
				b.handleMessageCreated(ctx, u)
			case *schemes.MessageCallbackUpdate:
				b.handleCallback(ctx, u)
			default:
				b.logger.Debugf("Unhandled update type: %T", upd)
			}
		}
	}()
}

func (b *Bot) today() time.Time {
	return b.now().In(schoolZone)
}
