package constant

const (
	ModuleQuestion = "QUESTION"
	ModuleReport   = "REPORT"
	ModuleLLM      = "LLM"
	ModuleActivity = "ACTIVITY"
	ModuleStorage  = "STORAGE"

	ReportFilename = "relatorio.pdf"

	ErrProjectRequired   = "Informe o nome do projeto."
	ErrQuestionRequired  = "Digite uma pergunta."
	ErrSessionRequired   = "Informe o session_id."
	ErrSectionNotAskable = "Esta seção não aceita perguntas."
	ErrUpstream          = "Falha ao consultar o modelo de IA. Tente novamente."
	ErrUpstreamTimeout   = "O modelo de IA demorou demais para responder. Tente novamente."
	ErrEmptyAnswer       = "O modelo de IA retornou uma resposta vazia."
	ErrStorage           = "Não foi possível registrar a resposta."
	ErrHistory           = "Não foi possível carregar o histórico."
	ErrNothingToReport   = "Nada para relatar: ainda não há respostas para este projeto nesta sessão."
	ErrIncompleteReport  = "Ainda não existem respostas para todas as seções."
	ErrInconsistent      = "Inconsistência detectada entre as respostas das seções."
	ErrReportFailed      = "Falha ao gerar o relatório."
	ErrReportTimeout     = "A geração do relatório excedeu o tempo limite."

	InstructionIncomplete   = "Chame as rotas /visao, /materiais, /montagem e /procedimento usando o mesmo session_id antes de gerar o relatório."
	InstructionInconsistent = "Revise as seções listadas (re-pesquise com o mesmo projeto) para torná-las coerentes antes de gerar o relatório."

	// ConsistencyCheckInstruction asks the model to compare the latest answer of each section.
	ConsistencyCheckInstruction = `Você revisa relatórios técnicos de projetos de física.
Receberá o nome de um projeto e o texto de cada seção (visão geral, materiais, montagem, procedimento).
Verifique se todas as seções descrevem o MESMO projeto e se são coerentes entre si
(por exemplo: a montagem usa os materiais listados e o procedimento usa a montagem descrita).
Responda APENAS em JSON válido no formato:
{"consistent": true|false, "mismatch": ["chave_da_secao", ...], "explanation": "texto curto"}
Use as chaves de seção exatamente como recebidas.`
)
