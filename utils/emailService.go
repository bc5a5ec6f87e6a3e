package utils

import (
	"classboard/config"
	"fmt"
	"log"
	"net/smtp"
)

// SendEnrollmentEmail sends an email notification when a student enrolls in a classroom
func SendEnrollmentEmail(email, userName, classroomName string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	if from == "" || password == "" {
		return nil // mail not configured
	}

	to := []string{email}

	subject := "Subject: Classroom Enrollment Confirmation - Classboard\nMIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"

	body := fmt.Sprintf(`
		<html>
			<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
				<div style="max-width: 600px; margin: auto; background-color: #ffffff; border-radius: 8px; padding: 30px; box-shadow: 0 2px 8px rgba(0, 0, 0, 0.1);">
					<h2 style="color: #333333; text-align: center;">🎉 Enrollment Successful!</h2>
					<p style="font-size: 16px; color: #555555;">Dear %s,</p>
					<p style="font-size: 16px; color: #555555;">You have successfully joined:</p>
					<h3 style="text-align: center; color: #4CAF50; margin: 20px 0;">%s</h3>
					<p style="font-size: 14px; color: #666666;">You can now see the classroom's lessons and hand in your work.</p>
					<p style="font-size: 14px; color: #999999; text-align: center; margin-top: 30px;">Happy Learning!</p>
					<p style="text-align: center; font-size: 12px; color: #bbbbbb; margin-top: 20px;">Classboard Team</p>
				</div>
			</body>
		</html>
	`, userName, classroomName)

	message := []byte(subject + "\n" + body)
	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, message)
	if err != nil {
		log.Println("Error sending enrollment email:", err)
		return err
	}

	log.Println("Enrollment email sent successfully to", email)
	return nil
}

// SendGradeEmail notifies a student that their submission was graded
func SendGradeEmail(email, userName, lessonTitle string, grade float64) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	if from == "" || password == "" {
		return nil // mail not configured
	}

	to := []string{email}

	subject := "Subject: Your Submission Has Been Graded - Classboard\nMIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"

	body := fmt.Sprintf(`
		<html>
			<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
				<div style="max-width: 600px; margin: auto; background-color: #ffffff; border-radius: 8px; padding: 30px; box-shadow: 0 2px 8px rgba(0, 0, 0, 0.1);">
					<h2 style="color: #333333; text-align: center;">📝 Submission Graded</h2>
					<p style="font-size: 16px; color: #555555;">Dear %s,</p>
					<p style="font-size: 16px; color: #555555;">Your submission for the following lesson has been graded:</p>
					<h3 style="text-align: center; color: #4CAF50; margin: 20px 0;">%s</h3>
					<div style="background-color: #f8f9fa; border-radius: 8px; padding: 20px; margin: 20px 0; text-align: center;">
						<p style="font-size: 14px; color: #666666; margin-bottom: 10px;">Your Grade:</p>
						<h2 style="color: #2196F3; margin: 0;">%.1f</h2>
					</div>
					<p style="font-size: 14px; color: #666666;">Log in to see your teacher's feedback.</p>
					<p style="text-align: center; font-size: 12px; color: #bbbbbb; margin-top: 20px;">Classboard Team</p>
				</div>
			</body>
		</html>
	`, userName, lessonTitle, grade)

	message := []byte(subject + "\n" + body)
	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, message)
	if err != nil {
		log.Println("Error sending grade email:", err)
		return err
	}

	log.Println("Grade email sent successfully to", email)
	return nil
}
