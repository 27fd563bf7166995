package config

import (
	"github.com/aretw0/leadchat/pkg/domain"
)

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		Profile: Profile{
			Name:          "João",
			Role:          "Atendimento",
			Gender:        "male",
			Status:        "online",
			StatusMessage: "Normalmente responde em minutos",
		},
		Channel: Channel{
			Number: "5519991078220",
			Message: "Olá! Vim pelo site e gostaria de continuar o atendimento.\n\n" +
				"*Meus dados:*\n" +
				"- *Nome:* {userName}\n" +
				"- *E-mail:* {userEmail}\n" +
				"- *WhatsApp:* {userPhone}",
			DesktopBehavior:     domain.PolicyAsk,
			AutoRedirectSeconds: 6,
			ChoiceCooldown:      Ms(1500),
			AppURL:              "https://wa.me/{number}?text={text}",
			WebURL:              "https://web.whatsapp.com/send?phone={number}&text={text}",
		},
		Timing: Timing{
			FirstNotification:  Ms(2000),
			SecondNotification: Ms(7000),
			TypingDuration:     TypingWindow{Min: Ms(600), Max: Ms(1200)},
			MessageDelay:       Ms(300),
			ReadReceiptDelay:   Ms(400),
			RedirectDelay:      Ms(1500),
			OpenDelay:          Ms(500),
			CountdownTick:      Ms(1000),
		},
		Messages: Messages{
			Notifications: []string{
				"Olá! Sou {article} {profileName}, estou fazendo seu primeiro atendimento 😊",
				"Vamos lá, quero saber mais sobre como posso te ajudar...",
			},
			Flow: Script{
				domain.BotStep{Text: "Pra começar, como posso te chamar?"},
				domain.InputStep{Field: domain.FieldName, Placeholder: "Seu nome...", Validation: domain.FieldName},
				domain.BotStep{Text: "Que bom te conhecer, {userName}! Me passa seu melhor e-mail?"},
				domain.InputStep{Field: domain.FieldEmail, Placeholder: "Seu e-mail...", Validation: domain.FieldEmail},
				domain.BotStep{Text: "E qual seu WhatsApp? Assim a gente conversa por lá 😊"},
				domain.InputStep{Field: domain.FieldPhone, Placeholder: "(00) 00000-0000", Validation: domain.FieldPhone},
				domain.BotStep{Text: "Perfeito, {userName}! Vamos continuar pelo WhatsApp 👋"},
				domain.RedirectStep{},
			},
			Validation: map[domain.Field]string{
				domain.FieldName:  "Ops, não entendi... pode me falar seu nome de novo?",
				domain.FieldEmail: "Hmm, esse e-mail não tá certo... confere pra mim?",
				domain.FieldPhone: "Esse número tá estranho... coloca com DDD, tipo (11) 99999-9999",
			},
		},
		UI: UI{
			InputPlaceholder: "Digite uma mensagem...",
			SendButton:       "Enviar",
			Typing:           "digitando...",
			Online:           "Online agora!",
			Offline:          "offline",
			FallbackName:     "você",
			ConsentAccepted:  "✓ Aceito receber contato",
			ChoicePrompt:     "Escolha como quer abrir o WhatsApp:",
			ChoiceNudge:      "Escolha uma opção para continuar 👆",
		},
		Tracking: Tracking{
			Enabled:     true,
			CaptureUTM:  true,
			UTMParams:   []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content"},
			ExtraParams: []string{"gclid", "fbclid", "ref", "source"},
			Events: Events{
				Enabled: true,
				Names: map[domain.EventType]string{
					domain.EventWidgetOpen:      "whatsapp_widget_open",
					domain.EventWidgetClose:     "whatsapp_widget_close",
					domain.EventMessageReceived: "whatsapp_widget_message",
					domain.EventLeadCaptured:    "whatsapp_lead_captured",
					domain.EventFieldFilled:     "whatsapp_field_filled",
					domain.EventRedirected:      "whatsapp_redirect",
					domain.EventVisitorReturned: "whatsapp_visitor_returned",
				},
			},
			CustomTags: map[string]string{
				"source":  "whatsapp_widget",
				"version": "1.0.0",
			},
			Persistence: Persistence{
				Enabled:            true,
				ExpirationDays:     90,
				TrackVisits:        true,
				TrackPages:         true,
				RecognizeReturning: true,
				MaxPages:           domain.MaxPages,
			},
		},
		Integrations: Integrations{
			Webhook: Webhook{
				Method:  "POST",
				Headers: map[string]string{"Content-Type": "application/json"},
			},
			Backup: Backup{
				Enabled: true,
				Key:     domain.DefaultBackupKey,
			},
			Email: Email{
				Subject: "Novo lead: {userName}",
			},
			Timeout: Ms(10000),
		},
		Privacy: Privacy{
			Enabled:             true,
			CheckboxLabel:       "Li, aceito os termos e quero receber contato!",
			LinkText:            "Ver termos",
			RequiredMessage:     "Marque a caixa acima para continuar",
			ConfirmationMessage: "Só mais uma coisa! Confirma abaixo que aceita receber nosso contato 👇",
			ConsentDeclaration: "Declaro que li e aceito a Política de Privacidade e autorizo o contato por WhatsApp, " +
				"e-mail e telefone para receber informações sobre produtos e serviços.",
			ModalTitle:   "Política de Privacidade e Termos de Uso",
			ModalContent: defaultPrivacyPolicy,
		},
		Advanced: Advanced{
			StoragePrefix:   "wwl_",
			SessionIDLength: 16,
			MaxStoredLeads:  100,
			MaxInputSize:    512,
		},
	}
}

const defaultPrivacyPolicy = `## Coleta de Dados

Ao preencher este formulário, você está fornecendo voluntariamente seus dados pessoais (nome, e-mail e telefone) para nossa empresa.

## Finalidade

Seus dados serão utilizados para:

- Entrar em contato via WhatsApp, e-mail ou telefone
- Enviar informações sobre nossos produtos e serviços
- Oferecer atendimento personalizado

## Consentimento

Ao marcar a caixa de aceite e enviar seus dados, você declara que:

- Concorda em receber mensagens via WhatsApp
- Concorda em receber e-mails informativos e promocionais
- Concorda em receber ligações telefônicas

## Seus Direitos (LGPD)

Conforme a Lei Geral de Proteção de Dados (Lei nº 13.709/2018), você tem direito a:

- Solicitar acesso aos seus dados
- Corrigir dados incompletos ou desatualizados
- Solicitar a exclusão dos seus dados
- Revogar seu consentimento a qualquer momento

## Contato

Para exercer seus direitos ou tirar dúvidas, entre em contato conosco.
`
