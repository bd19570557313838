package main

import (
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/FAHMIDA-78/copo/core"
	"github.com/FAHMIDA-78/copo/core/attain"
	"github.com/FAHMIDA-78/copo/core/batch"
	emailsvc "github.com/FAHMIDA-78/copo/services/email"
	sqlxrepos "github.com/FAHMIDA-78/copo/storage/database/sqlx"
)

// stdLogger adapts the admin's standard logger to core.Logger.
type stdLogger struct{}

func (stdLogger) Enable(bool)                        {}
func (stdLogger) Debug(msg string, _ ...interface{}) { logger.Println(msg) }
func (stdLogger) Info(msg string, _ ...interface{})  { logger.Println(msg) }
func (stdLogger) Warn(msg string, _ ...interface{})  { logger.Println(msg) }
func (stdLogger) Error(msg string, _ ...interface{}) { logger.Println(msg) }
func (stdLogger) Fatal(msg string, _ ...interface{}) { logger.Fatal(msg) }

func sendReportsCmd(cli *commandLine) *cobra.Command {
	var (
		batchID        string
		includeParents bool
	)

	cmd := &cobra.Command{
		Use:   "sendreports",
		Short: "Email result reports for a processed batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newBatchService(cli)
			if err != nil {
				return err
			}
			sent, err := svc.SendReports(batchID, includeParents)
			if err != nil {
				return err
			}
			logger.Printf("queued %d report emails for batch %s", sent, batchID)
			return nil
		},
	}
	cmd.Flags().StringVar(&batchID, "batch", "", "The batch ID")
	cmd.Flags().BoolVar(&includeParents, "parents", false, "Also email parents")
	_ = cmd.MarkFlagRequired("batch")
	return cmd
}

func newBatchService(cli *commandLine) (*batch.Service, error) {
	var mailSvc core.EmailService
	if cli.conf.Debug {
		mailSvc = emailsvc.NewConsoleService(cli.conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(cli.conf, stdLogger{})
	}

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	core.ParseEmailTemplates(cli.conf, stdLogger{})

	eng, err := attain.NewEngine(validate)
	if err != nil {
		return nil, err
	}
	return batch.NewService(sqlxrepos.NewBatchRepository(cli.db), eng, mailSvc, stdLogger{}), nil
}
