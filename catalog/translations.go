package catalog

// Non-negative status codes originate at the reader; negative codes
// originate in the SDK. Both tables are taken directly from the original
// status_translations.py STATUS_TRANSLATIONS table.
const (
	StatusSuccess               = 0x00
	StatusGeneralError          = 0x01
	StatusMemoryOverrun         = 0x02
	StatusMemoryLocked          = 0x03
	StatusAuthFail              = 0x04
	StatusNoTag                 = 0x0B
	StatusRFTimeout             = 0x0C
	StatusParameterUnsupported  = 0x14
	StatusParameterLengthError  = 0x15
	StatusParameterContextError = 0x16
	StatusUnsupportedCommand    = 0x17
	StatusAddressError          = 0x18
	StatusChecksumError         = 0x20
	StatusUnsupportedTLVType    = 0x21
	StatusFlashError            = 0x22
	StatusInternalError         = 0xFF

	// SDK-origin (negative) codes.
	ErrGeneralCommunication = -1
	ErrPortAccess           = -2
	ErrPortConfiguration    = -3
	ErrOperationTimeout     = -4
	ErrInvalidParameter     = -5
	ErrResourceBusy         = -6
	ErrDeviceNotFound       = -10
	ErrUndefined            = -99
)

func defaultTranslations() map[int]map[string]string {
	return map[int]map[string]string{
		StatusSuccess: {
			English: "Operation successful", Bulgarian: "Операцията е успешна",
			Russian: "Операция выполнена успешно", German: "Operation erfolgreich",
			French: "Opération réussie", Chinese: "操作成功",
		},
		StatusGeneralError: {
			English: "General error", Bulgarian: "Обща грешка",
			Russian: "Общая ошибка", German: "Allgemeiner Fehler",
			French: "Erreur générale", Chinese: "一般错误",
		},
		StatusMemoryOverrun: {
			English: "Memory overrun", Bulgarian: "Препълване на паметта",
			Russian: "Переполнение памяти", German: "Speicherüberlauf",
			French: "Dépassement de mémoire", Chinese: "内存溢出",
		},
		StatusMemoryLocked: {
			English: "Memory locked", Bulgarian: "Паметта е заключена",
			Russian: "Память заблокирована", German: "Speicher gesperrt",
			French: "Mémoire verrouillée", Chinese: "内存已锁定",
		},
		StatusAuthFail: {
			English: "Authentication failed", Bulgarian: "Неуспешна автентикация",
			Russian: "Ошибка аутентификации", German: "Authentifizierung fehlgeschlagen",
			French: "Échec d'authentification", Chinese: "认证失败",
		},
		StatusNoTag: {
			English: "No tag responding", Bulgarian: "Няма отговор от таг",
			Russian: "Нет ответа от метки", German: "Kein Tag antwortet",
			French: "Aucune étiquette ne répond", Chinese: "无标签响应",
		},
		StatusRFTimeout: {
			English: "RF communication timeout", Bulgarian: "Изтекло време за RF комуникация",
			Russian: "Тайм-аут RF-связи", German: "RF-Kommunikations-Timeout",
			French: "Timeout de communication RF", Chinese: "RF通信超时",
		},
		StatusParameterUnsupported: {
			English: "Parameter unsupported", Bulgarian: "Неподдържан параметър",
			Russian: "Неподдерживаемый параметр", German: "Parameter nicht unterstützt",
			French: "Paramètre non pris en charge", Chinese: "参数不支持",
		},
		StatusParameterLengthError: {
			English: "Parameter length error", Bulgarian: "Грешка в дължината на параметъра",
			Russian: "Ошибка длины параметра", German: "Parameterlängenfehler",
			French: "Erreur de longueur de paramètre", Chinese: "参数长度错误",
		},
		StatusParameterContextError: {
			English: "Parameter context error", Bulgarian: "Грешка в контекста на параметъра",
			Russian: "Ошибка контекста параметра", German: "Parameterkontextfehler",
			French: "Erreur de contexte de paramètre", Chinese: "参数上下文错误",
		},
		StatusUnsupportedCommand: {
			English: "Unsupported command", Bulgarian: "Неподдържана команда",
			Russian: "Неподдерживаемая команда", German: "Nicht unterstützter Befehl",
			French: "Commande non prise en charge", Chinese: "不支持的命令",
		},
		StatusAddressError: {
			English: "Address error", Bulgarian: "Грешка в адреса",
			Russian: "Ошибка адреса", German: "Adressfehler",
			French: "Erreur d'adresse", Chinese: "地址错误",
		},
		StatusChecksumError: {
			English: "Checksum error", Bulgarian: "Грешка в контролната сума",
			Russian: "Ошибка контрольной суммы", German: "Prüfsummenfehler",
			French: "Erreur de somme de contrôle", Chinese: "校验和错误",
		},
		StatusUnsupportedTLVType: {
			English: "Unsupported TLV type", Bulgarian: "Неподдържан тип TLV",
			Russian: "Неподдерживаемый тип TLV", German: "Nicht unterstützter TLV-Typ",
			French: "Type TLV non pris en charge", Chinese: "不支持的TLV类型",
		},
		StatusFlashError: {
			English: "Flash error", Bulgarian: "Грешка във флаш паметта",
			Russian: "Ошибка флеш-памяти", German: "Flash-Fehler",
			French: "Erreur flash", Chinese: "闪存错误",
		},
		StatusInternalError: {
			English: "Internal error", Bulgarian: "Вътрешна грешка",
			Russian: "Внутренняя ошибка", German: "Interner Fehler",
			French: "Erreur interne", Chinese: "内部错误",
		},

		ErrGeneralCommunication: {
			English: "General communication error", Bulgarian: "Обща комуникационна грешка",
			Russian: "Общая ошибка связи", German: "Allgemeiner Kommunikationsfehler",
			French: "Erreur de communication générale", Chinese: "通信总错误",
		},
		ErrPortAccess: {
			English: "Port access error", Bulgarian: "Грешка при достъп до порт",
			Russian: "Ошибка доступа к порту", German: "Portzugriffsfehler",
			French: "Erreur d'accès au port", Chinese: "端口访问错误",
		},
		ErrPortConfiguration: {
			English: "Port configuration error", Bulgarian: "Грешка в конфигурацията на порта",
			Russian: "Ошибка конфигурации порта", German: "Portkonfigurationsfehler",
			French: "Erreur de configuration du port", Chinese: "端口配置错误",
		},
		ErrOperationTimeout: {
			English: "Operation timeout", Bulgarian: "Изтекло време за операцията",
			Russian: "Тайм-аут операции", German: "Zeitüberschreitung bei der Operation",
			French: "Délai d'opération expiré", Chinese: "操作超时",
		},
		ErrInvalidParameter: {
			English: "Invalid parameter", Bulgarian: "Невалиден параметър",
			Russian: "Недопустимый параметр", German: "Ungültiger Parameter",
			French: "Paramètre invalide", Chinese: "无效参数",
		},
		ErrResourceBusy: {
			English: "Resource busy", Bulgarian: "Ресурсът е зает",
			Russian: "Ресурс занят", German: "Ressource beschäftigt",
			French: "Ressource occupée", Chinese: "资源繁忙",
		},
		ErrDeviceNotFound: {
			English: "Device not found", Bulgarian: "Устройството не е намерено",
			Russian: "Устройство не найдено", German: "Gerät nicht gefunden",
			French: "Périphérique introuvable", Chinese: "未找到设备",
		},
		ErrUndefined: {
			English: "Undefined error", Bulgarian: "Неопределена грешка",
			Russian: "Неопределенная ошибка", German: "Undefinierter Fehler",
			French: "Erreur non définie", Chinese: "未定义的错误",
		},
	}
}
