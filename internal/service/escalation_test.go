package service_test

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"rollcall.app/bot/core/config"
	"rollcall.app/bot/internal/clock"
	"rollcall.app/bot/internal/model"
	"rollcall.app/bot/internal/notify"
	"rollcall.app/bot/internal/service"
)

var _ = Describe("EscalationService", func() {
	var (
		ctx              context.Context
		cfg              config.CheckinConfig
		mockParticipants *mockParticipantStore
		mockLedger       *mockLedgerStore
		mockCounters     *mockCounterStore
		notifier         *mockNotifier
		svc              service.EscalationService
	)

	const chatID = int64(-100)
	now := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)

	newService := func() service.EscalationService {
		directory := service.NewDirectoryService(mockParticipants)
		log := slog.New(slog.NewTextHandler(GinkgoWriter, nil))
		return service.NewEscalationService(directory, mockLedger, mockCounters, notifier, cfg, clock.Fixed(now), log)
	}

	BeforeEach(func() {
		ctx = context.Background()
		cfg = config.CheckinConfig{
			Timezone:         "UTC",
			ReminderCap:      4,
			CountFailedSends: true,
		}
		mockParticipants = &mockParticipantStore{
			activeChatIDsFn: func(ctx context.Context) ([]int64, error) {
				return []int64{chatID}, nil
			},
		}
		mockLedger = &mockLedgerStore{}
		mockCounters = &mockCounterStore{counts: map[int64]int{}}
		notifier = &mockNotifier{}
		svc = newService()
	})

	Describe("RunOpening", func() {
		Context("on a fresh day", func() {
			It("clears leftover state before prompting", func() {
				Expect(svc.RunOpening(ctx)).To(Succeed())
				Expect(mockLedger.resetCalls).To(Equal(1))
				Expect(mockCounters.resetCalls).To(Equal(1))
			})

			It("sends the opening prompt without mentions", func() {
				Expect(svc.RunOpening(ctx)).To(Succeed())
				Expect(notifier.sent).To(HaveLen(1))
				Expect(notifier.sent[0].chatID).To(Equal(chatID))
				Expect(notifier.sent[0].text).NotTo(ContainSubstring("@"))
				Expect(notifier.sent[0].opts.Markdown).To(BeFalse())
			})

			It("consumes the first reminder slot", func() {
				Expect(svc.RunOpening(ctx)).To(Succeed())
				Expect(mockCounters.counts[chatID]).To(Equal(1))
			})
		})

		Context("when the day already started", func() {
			BeforeEach(func() {
				mockCounters.counts[chatID] = 2
			})

			It("does not clear state", func() {
				Expect(svc.RunOpening(ctx)).To(Succeed())
				Expect(mockLedger.resetCalls).To(BeZero())
				Expect(mockCounters.resetCalls).To(BeZero())
			})
		})

		Context("when the chat is at the cap", func() {
			BeforeEach(func() {
				mockCounters.counts[chatID] = 4
			})

			It("sends nothing and consumes nothing", func() {
				Expect(svc.RunOpening(ctx)).To(Succeed())
				Expect(notifier.sent).To(BeEmpty())
				Expect(mockCounters.incrementCalls).To(BeZero())
			})
		})

		Context("when one chat fails", func() {
			BeforeEach(func() {
				mockParticipants.activeChatIDsFn = func(ctx context.Context) ([]int64, error) {
					return []int64{-1, -2}, nil
				}
				notifier.sendFn = func(ctx context.Context, chatID int64, text string, opts notify.SendOptions) error {
					if chatID == -1 {
						return fmt.Errorf("chat unreachable")
					}
					return nil
				}
			})

			It("still processes the remaining chats", func() {
				Expect(svc.RunOpening(ctx)).To(Succeed())
				Expect(notifier.sent).To(HaveLen(2))
				Expect(mockCounters.counts[-2]).To(Equal(1))
			})

			It("consumes the failing chat's slot under the default policy", func() {
				Expect(svc.RunOpening(ctx)).To(Succeed())
				Expect(mockCounters.counts[-1]).To(Equal(1))
			})
		})

		Context("when failed sends are not counted", func() {
			BeforeEach(func() {
				cfg.CountFailedSends = false
				notifier.sendFn = func(ctx context.Context, chatID int64, text string, opts notify.SendOptions) error {
					return fmt.Errorf("chat unreachable")
				}
				svc = newService()
			})

			It("leaves the counter untouched", func() {
				Expect(svc.RunOpening(ctx)).To(Succeed())
				Expect(mockCounters.incrementCalls).To(BeZero())
			})
		})
	})

	Describe("RunFollowUp", func() {
		roster := []model.Participant{
			{ID: 1, ChatID: chatID, UserID: 5, Handle: "alice", Active: true},
			{ID: 2, ChatID: chatID, UserID: 2, Handle: "bob_dev", Active: true},
			{ID: 3, ChatID: chatID, UserID: 9, Handle: "", Active: true},
		}

		BeforeEach(func() {
			mockCounters.counts[chatID] = 1
			mockParticipants.listActiveByChatFn = func(ctx context.Context, id int64) ([]model.Participant, error) {
				return roster, nil
			}
		})

		Context("when some participants have not responded", func() {
			BeforeEach(func() {
				mockLedger.getUnrespondedFn = func(ctx context.Context, chatID int64, date string, trackedIDs []int64) ([]int64, error) {
					return []int64{5, 2, 9}, nil
				}
			})

			It("mentions them in roster order with Markdown", func() {
				Expect(svc.RunFollowUp(ctx)).To(Succeed())
				Expect(notifier.sent).To(HaveLen(1))
				Expect(notifier.sent[0].opts.Markdown).To(BeTrue())
				Expect(notifier.sent[0].text).To(HavePrefix("@alice, @bob\\_dev, [User 9](tg://user?id=9)"))
			})

			It("consumes a reminder slot", func() {
				Expect(svc.RunFollowUp(ctx)).To(Succeed())
				Expect(mockCounters.counts[chatID]).To(Equal(2))
			})

			It("passes the roster ids through in order", func() {
				var captured []int64
				mockLedger.getUnrespondedFn = func(ctx context.Context, chatID int64, date string, trackedIDs []int64) ([]int64, error) {
					captured = trackedIDs
					return nil, nil
				}
				Expect(svc.RunFollowUp(ctx)).To(Succeed())
				Expect(captured).To(Equal([]int64{5, 2, 9}))
			})
		})

		Context("when only part of the roster responded", func() {
			BeforeEach(func() {
				mockLedger.getUnrespondedFn = func(ctx context.Context, chatID int64, date string, trackedIDs []int64) ([]int64, error) {
					return []int64{5, 9}, nil
				}
			})

			It("mentions only the silent participants", func() {
				Expect(svc.RunFollowUp(ctx)).To(Succeed())
				Expect(notifier.sent[0].text).NotTo(ContainSubstring("bob"))
				Expect(notifier.sent[0].text).To(ContainSubstring("@alice"))
			})
		})

		Context("when everyone responded", func() {
			BeforeEach(func() {
				mockLedger.getUnrespondedFn = func(ctx context.Context, chatID int64, date string, trackedIDs []int64) ([]int64, error) {
					return nil, nil
				}
			})

			It("sends nothing and consumes nothing", func() {
				Expect(svc.RunFollowUp(ctx)).To(Succeed())
				Expect(notifier.sent).To(BeEmpty())
				Expect(mockCounters.incrementCalls).To(BeZero())
			})
		})

		Context("when the chat is at the cap", func() {
			BeforeEach(func() {
				mockCounters.counts[chatID] = 4
			})

			It("never queries the roster", func() {
				Expect(svc.RunFollowUp(ctx)).To(Succeed())
				Expect(mockParticipants.listCalls).To(BeZero())
				Expect(notifier.sent).To(BeEmpty())
			})
		})

		Context("over a full day at the default cap", func() {
			BeforeEach(func() {
				mockCounters.counts[chatID] = 0
				mockLedger.getUnrespondedFn = func(ctx context.Context, chatID int64, date string, trackedIDs []int64) ([]int64, error) {
					return []int64{5}, nil
				}
			})

			It("stops after four sends total", func() {
				Expect(svc.RunOpening(ctx)).To(Succeed())
				for i := 0; i < 5; i++ {
					Expect(svc.RunFollowUp(ctx)).To(Succeed())
				}
				Expect(notifier.sent).To(HaveLen(4))
				Expect(mockCounters.counts[chatID]).To(Equal(4))
			})
		})
	})
})
