package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"sort"

	"noticeboard/pkg/logger"
)

// Config 邮件配置
type Config struct {
	Host     string // SMTP服务器地址
	Port     int    // SMTP服务器端口
	Username string // 邮箱账号
	Password string // 邮箱密码
	From     string // 发件人
	FromName string // 发件人名称
}

// EmailType 邮件类型
type EmailType string

const (
	// TypeWelcome 楼宇注册成功邮件
	TypeWelcome EmailType = "welcome"
	// TypeTokenReset 登录令牌重置提醒
	TypeTokenReset EmailType = "token_reset"
)

const productName = "Lobby Notice Board"

var templates = template.Must(template.New("mail").Parse(`
{{define "welcome"}}<html><body>
<h2>{{.BuildingName}}</h2>
<p>Your building has been registered on {{.ProductName}}.</p>
<p>Open the lobby screen at: <a href="{{.DisplayPath}}">{{.DisplayPath}}</a></p>
</body></html>{{end}}
{{define "token_reset"}}<html><body>
<h2>{{.BuildingName}}</h2>
<p>The dashboard access token of your building was reset. Every open dashboard session has been signed out.</p>
</body></html>{{end}}
`))

// EmailData 邮件数据
type EmailData struct {
	To           string
	Subject      string
	ProductName  string
	BuildingName string
	DisplayPath  string
}

// Sender 邮件发送接口，服务层依赖此接口
type Sender interface {
	SendWelcomeEmail(to, buildingName, displayPath string) error
	SendTokenResetEmail(to, buildingName string) error
}

// Service 邮件服务
type Service struct {
	config Config
	logger *logger.Logger
}

// NewService 创建邮件服务
func NewService(config Config, logger *logger.Logger) *Service {
	return &Service{
		config: config,
		logger: logger,
	}
}

// SendEmail 发送邮件
func (s *Service) SendEmail(emailType EmailType, data EmailData) error {
	if data.ProductName == "" {
		data.ProductName = productName
	}

	if data.Subject == "" {
		switch emailType {
		case TypeWelcome:
			data.Subject = fmt.Sprintf("%s - %s", data.ProductName, data.BuildingName)
		case TypeTokenReset:
			data.Subject = fmt.Sprintf("%s - access token reset", data.ProductName)
		}
	}

	content, err := Render(emailType, data)
	if err != nil {
		return err
	}

	if s.config.Host == "" {
		s.logger.Warn("未配置SMTP服务器，跳过邮件发送", "to", data.To, "type", string(emailType))
		return nil
	}

	return s.send(data.To, data.Subject, content)
}

// Render 渲染邮件模板
func Render(emailType EmailType, data EmailData) (string, error) {
	buf := new(bytes.Buffer)
	if err := templates.ExecuteTemplate(buf, string(emailType), data); err != nil {
		return "", fmt.Errorf("渲染邮件模板失败: %w", err)
	}
	return buf.String(), nil
}

// send 通过TLS连接SMTP服务器发送邮件
func (s *Service) send(to, subject, body string) error {
	header := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From),
		"To":           to,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}

	keys := make([]string, 0, len(header))
	for k := range header {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var message bytes.Buffer
	for _, k := range keys {
		fmt.Fprintf(&message, "%s: %s\r\n", k, header[k])
	}
	message.WriteString("\r\n" + body)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		return fmt.Errorf("创建TLS连接失败: %w", err)
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("创建SMTP客户端失败: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP认证失败: %w", err)
	}
	if err = client.Mail(s.config.From); err != nil {
		return fmt.Errorf("设置发件人失败: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("设置收件人失败: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("准备发送数据失败: %w", err)
	}
	if _, err = w.Write(message.Bytes()); err != nil {
		return fmt.Errorf("写入邮件内容失败: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	s.logger.Info("邮件已发送", "to", to, "subject", subject)
	return client.Quit()
}

// SendWelcomeEmail 发送楼宇注册成功邮件
func (s *Service) SendWelcomeEmail(to, buildingName, displayPath string) error {
	return s.SendEmail(TypeWelcome, EmailData{
		To:           to,
		BuildingName: buildingName,
		DisplayPath:  displayPath,
	})
}

// SendTokenResetEmail 发送令牌重置提醒
func (s *Service) SendTokenResetEmail(to, buildingName string) error {
	return s.SendEmail(TypeTokenReset, EmailData{
		To:           to,
		BuildingName: buildingName,
	})
}
