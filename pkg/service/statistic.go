// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/service/social"
	"github.com/AccelByte/accelbyte-go-sdk/social-sdk/pkg/socialclient/user_statistic"
	"github.com/AccelByte/accelbyte-go-sdk/social-sdk/pkg/socialclientmodels"
	"github.com/AccelByte/extend-reading-challenge/pkg/challenge"
	"github.com/AccelByte/extend-reading-challenge/pkg/event"
	"github.com/sirupsen/logrus"
)

type StatisticService struct {
	statisticsService *social.UserStatisticService
	cfg               StatisticServiceConfig
}

type StatisticServiceConfig struct {
	Namespace string
}

var _ StatisticUpdater = (*StatisticService)(nil)

func NewStatisticService(
	statisticsService *social.UserStatisticService,
	cfg StatisticServiceConfig,
) *StatisticService {
	return &StatisticService{
		statisticsService: statisticsService,
		cfg:               cfg,
	}
}

// IncrementStat adds one to statCode for userID.
func (s *StatisticService) IncrementStat(ctx context.Context, userID, statCode string) error {
	input := &user_statistic.IncUserStatItemValueParams{
		Namespace: s.cfg.Namespace,
		UserID:    userID,
		StatCode:  statCode,
		Body: &socialclientmodels.StatItemInc{
			Inc: 1,
		},
	}

	_, err := s.statisticsService.IncUserStatItemValueShort(input)
	if err != nil {
		return fmt.Errorf("failed to increment user %s statistic %s: %w", userID, statCode, err)
	}

	return nil
}

// ChallengeStatsRecorder turns finished sessions into player statistics:
// every scored participant gets the participation stat and every winner the
// wins stat. An empty stat code disables that stat.
type ChallengeStatsRecorder struct {
	updater StatisticUpdater
	cfg     ChallengeStatsRecorderConfig
}

type ChallengeStatsRecorderConfig struct {
	WinsStatCode          string
	ParticipationStatCode string
}

var _ event.Consumer = (*ChallengeStatsRecorder)(nil)

func NewChallengeStatsRecorder(
	updater StatisticUpdater,
	cfg ChallengeStatsRecorderConfig,
) *ChallengeStatsRecorder {
	return &ChallengeStatsRecorder{
		updater: updater,
		cfg:     cfg,
	}
}

// Name implements event.Consumer.
func (r *ChallengeStatsRecorder) Name() string {
	return "ags-challenge-stats"
}

// Filter implements event.Consumer.
func (r *ChallengeStatsRecorder) Filter() event.Filter {
	return func(e challenge.Event) bool {
		return e.Type == challenge.EventScoreboardReady
	}
}

// Handle records statistics for the scoreboard in e. Every increment is
// attempted; failures are joined into the returned error.
func (r *ChallengeStatsRecorder) Handle(ctx context.Context, e challenge.Event) error {
	result, err := ResultFromEvent(e)
	if err != nil {
		return err
	}

	var errs []error
	if r.cfg.ParticipationStatCode != "" {
		for _, entry := range result.Scoreboard.Entries {
			if err := r.updater.IncrementStat(ctx, entry.Identity, r.cfg.ParticipationStatCode); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if r.cfg.WinsStatCode != "" {
		for _, winner := range result.Scoreboard.Winners {
			if err := r.updater.IncrementStat(ctx, winner, r.cfg.WinsStatCode); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("session %s: %w", result.SessionID, errors.Join(errs...))
	}

	logrus.Infof("recorded statistics for session %s: %d participants, winners %v",
		result.SessionID, len(result.Scoreboard.Entries), result.Scoreboard.Winners)
	return nil
}
