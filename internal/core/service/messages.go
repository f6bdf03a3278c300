package service

import (
	"fmt"

	"github.com/eventreg/registration-system/internal/core/domain"
	"github.com/eventreg/registration-system/internal/core/ports"
)

// Button texts. These double as match keys in the dispatch table, so they
// must stay byte-identical to what the keyboards suggest.
const (
	btnStart      = "🚀 Старт"
	btnConsentYes = "✅ Согласен"
	btnConsentNo  = "❌ Не согласен"
	btnSharePhone = "📱 Отправить номер телефона"

	btnAdminList        = "📋 Список"
	btnAdminExport      = "📤 Экспорт"
	btnAdminExportToday = "📤 Экспорт сегодня"
	btnAdminReset       = "🧹 Ресет базы"
	btnAdminClose       = "⬅️ Закрыть меню"
	btnBack             = "⬅️ Назад"

	btnFilterToday = "Сегодня"
	btnFilterAll   = "Все"
	btnFilterRange = "Диапазон дат"

	btnWipeYes = "✅ Да, стереть всё"
	btnWipeNo  = "❌ Отмена"
)

const (
	msgPressStart = "Нажмите кнопку «🚀 Старт», чтобы начать регистрацию."

	msgConsentPrompt = "Перед регистрацией нужно согласие на обработку данных (телефон, имя, фамилия) " +
		"для целей регистрации участника.\n\nВы согласны?"
	msgConsentDeclined = "Понял. Без согласия я не могу зарегистрировать вас.\n" +
		"Если передумаете — нажмите «🚀 Старт» или /start."
	msgConsentReprompt = "Пожалуйста, выберите кнопку: ✅ Согласен или ❌ Не согласен."

	msgPhonePrompt         = "Отлично. Теперь нажмите кнопку ниже, чтобы отправить номер телефона."
	msgPhoneViaButton      = "Пожалуйста, отправьте номер через кнопку «📱 Отправить номер телефона»."
	msgPhoneMustBeOwn      = "Пожалуйста, отправьте ваш собственный номер (через кнопку)."
	msgPhoneTakenShort     = "Этот номер уже зарегистрирован. Обратитесь к организатору."
	msgFirstNamePrompt     = "Введите ваше имя:"
	msgFirstNameInvalid    = "Введите корректное имя (2–50 символов):"
	msgLastNamePrompt      = "Введите вашу фамилию:"
	msgLastNameInvalid     = "Введите корректную фамилию (2–50 символов):"
	msgRegistrationFailed  = "Не удалось зарегистрировать (возможно, номер уже занят). Обратитесь к организатору."
	msgNotRegisteredYet    = "Вы ещё не зарегистрированы. Нажмите /start"
	msgStepReset           = "Сбросил текущий шаг. Нажмите «🚀 Старт» или /start."
	msgTurnFailed          = "Временная ошибка. Попробуйте ещё раз."
	msgAdminOnly           = "Команда доступна только администратору."
	msgAdminMenu           = "Админ-меню:"
	msgAdminMenuClosed     = "Меню закрыто."
	msgListFilterPrompt    = "Выберите фильтр для списка:"
	msgExportFilterPrompt  = "Выберите фильтр для экспорта:"
	msgRangeFromPrompt     = "Введите дату ОТ в формате YYYY-MM-DD (UTC):"
	msgRangeToPrompt       = "Введите дату ДО в формате YYYY-MM-DD (UTC):"
	msgRangeFromBadDate    = "Неверная дата. Формат YYYY-MM-DD. Введите дату ОТ ещё раз:"
	msgRangeToBadDate      = "Неверная дата. Формат YYYY-MM-DD. Введите дату ДО ещё раз:"
	msgFilterNotUnderstood = "Не понял. Нажми кнопку фильтра или введи: YYYY-MM-DD YYYY-MM-DD"
	msgBadRangeFormat      = "Неверный формат даты. Используй YYYY-MM-DD YYYY-MM-DD"
	msgBadRangeArgs        = "Неверные аргументы. Примеры: /export today или /export 2026-02-01 2026-02-06"
	msgEmptyPreview        = "Пока пусто."
	msgExportEmpty         = "По этому фильтру нет участников."
	msgResetNoPassword     = "RESET_PASSWORD не задан в конфигурации.\nДобавьте переменную RESET_PASSWORD и попробуйте снова."
	msgResetPasswordPrompt = "Введите пароль для ресета базы:"
	msgResetWrongPassword  = "Неверный пароль. Попробуйте ещё раз или нажмите «⬅️ Назад»."
	msgResetConfirmPrompt  = "⚠️ Пароль верный.\nЭто удалит ВСЕХ участников и сбросит нумерацию обратно с 1.\n\nПодтвердить?"
	msgResetConfirmButtons = "Выберите кнопку: ✅ Да, стереть всё или ❌ Отмена"
	msgResetCancelled      = "Ок, отменил."
	msgResetDone           = "Готово ✅ База очищена, нумерация начнётся заново с 1."
)

func fmtAlreadyRegisteredFull(p *domain.Participant) string {
	return fmt.Sprintf(
		"Вы уже зарегистрированы ✅\nНомер участника: %d\nИмя: %s\nФамилия: %s\nТелефон: %s\n\nНажмите «🚀 Старт», чтобы открыть начало.",
		p.Number, p.FirstName, p.LastName, p.Phone,
	)
}

func fmtAlreadyRegisteredShort(number int64) string {
	return fmt.Sprintf("Вы уже зарегистрированы ✅\nНомер участника: %d\n\nКоманда /my — показать номер.", number)
}

func fmtProfile(p *domain.Participant) string {
	return fmt.Sprintf("Ваш номер участника: %d\nИмя: %s\nФамилия: %s\nТелефон: %s",
		p.Number, p.FirstName, p.LastName, p.Phone)
}

func fmtPhoneTaken(p *domain.Participant) string {
	return fmt.Sprintf(
		"Этот номер телефона уже зарегистрирован другим участником.\nЕсли это ошибка — обратитесь к организатору.\n(Номер участника по этому телефону: %d, имя: %s)",
		p.Number, p.FullName(),
	)
}

func fmtRegistered(number int64) string {
	return fmt.Sprintf("Готово! Вы зарегистрированы ✅\nВаш номер участника: %d\n\nКоманда /my — показать мой номер.", number)
}

// --- Keyboards ---

func row(buttons ...ports.Button) []ports.Button { return buttons }

func startKeyboard() *ports.Keyboard {
	return &ports.Keyboard{Rows: [][]ports.Button{row(ports.Button{Text: btnStart})}}
}

func consentKeyboard() *ports.Keyboard {
	return &ports.Keyboard{
		Rows:    [][]ports.Button{row(ports.Button{Text: btnConsentYes}, ports.Button{Text: btnConsentNo})},
		OneTime: true,
	}
}

func contactKeyboard() *ports.Keyboard {
	return &ports.Keyboard{
		Rows:    [][]ports.Button{row(ports.Button{Text: btnSharePhone, RequestContact: true})},
		OneTime: true,
	}
}

func adminKeyboard() *ports.Keyboard {
	return &ports.Keyboard{Rows: [][]ports.Button{
		row(ports.Button{Text: btnAdminList}, ports.Button{Text: btnAdminExport}),
		row(ports.Button{Text: btnAdminExportToday}),
		row(ports.Button{Text: btnAdminReset}),
		row(ports.Button{Text: btnAdminClose}),
	}}
}

func adminFilterKeyboard() *ports.Keyboard {
	return &ports.Keyboard{
		Rows: [][]ports.Button{
			row(ports.Button{Text: btnFilterToday}, ports.Button{Text: btnFilterAll}),
			row(ports.Button{Text: btnFilterRange}),
			row(ports.Button{Text: btnBack}),
		},
		OneTime: true,
	}
}

func adminBackKeyboard() *ports.Keyboard {
	return &ports.Keyboard{
		Rows:    [][]ports.Button{row(ports.Button{Text: btnBack})},
		OneTime: true,
	}
}

func wipeConfirmKeyboard() *ports.Keyboard {
	return &ports.Keyboard{
		Rows:    [][]ports.Button{row(ports.Button{Text: btnWipeYes}, ports.Button{Text: btnWipeNo})},
		OneTime: true,
	}
}

func textReply(text string, kb *ports.Keyboard) ports.Reply {
	return ports.Reply{Text: text, Keyboard: kb}
}

func plainReply(text string) ports.Reply {
	return ports.Reply{Text: text}
}

func removeKeyboardReply(text string) ports.Reply {
	return ports.Reply{Text: text, RemoveKeyboard: true}
}
