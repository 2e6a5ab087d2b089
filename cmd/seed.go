package cmd

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-user/app/service"
	"github.com/vibast-solutions/ms-go-user/app/types"
)

const (
	demoEmail    = "demo@app.com"
	demoUsername = "demo"
	demoName     = "demo"
	demoPassword = "Test@123"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo user if it does not exist yet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		userAuthService, _, db, err := newCommandService()
		if err != nil {
			return err
		}
		defer db.Close()

		firstName, lastName := demoName, demoName
		result, err := userAuthService.Signup(commandContext(cmd), &types.SignupRequest{
			Email:     demoEmail,
			Username:  demoUsername,
			Password:  demoPassword,
			FirstName: &firstName,
			LastName:  &lastName,
		})
		if err != nil {
			if errors.Is(err, service.ErrUserExists) {
				logrus.WithField("email", demoEmail).Info("Demo user already present")
				return nil
			}
			return err
		}

		logrus.WithFields(logrus.Fields{
			"user_id":  result.ID,
			"email":    result.Email,
			"username": result.Username,
		}).Info("Demo user created")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
