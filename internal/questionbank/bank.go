package questionbank

// Placeholder is replaced with the course title in generic templates.
const Placeholder = "@@"

// banks holds the hand-authored questions per category, correct answer
// first.
var banks = map[Category][]item{
	CategoryTech: {
		{"Qual a função do atalho Ctrl + C?", [4]string{"Copiar", "Colar", "Cortar", "Salvar"}},
		{"O que é um Backup?", [4]string{"Cópia de segurança", "Um vírus", "Um monitor", "Uma cadeira"}},
		{"Qual destes é um Sistema Operacional?", [4]string{"Windows", "Mouse", "Google", "Word"}},
		{"O que significa 'Nuvem' na informática?", [4]string{"Servidores acessados pela internet", "Água evaporada", "Um software de desenho", "Apenas um termo de marketing"}},
		{"Para que serve um Antivírus?", [4]string{"Proteger contra malware", "Deixar o PC mais rápido", "Criar planilhas", "Editar vídeos"}},
	},
	CategoryAdmin: {
		{"O que é um Organograma?", [4]string{"Gráfico da estrutura da empresa", "Lista de compras", "Agenda telefônica", "Mapa da cidade"}},
		{"O que significa Feedback?", [4]string{"Retorno sobre desempenho", "Comida rápida", "Pagamento adiantado", "Demissão"}},
		{"Qual a função do RH?", [4]string{"Gestão de pessoas", "Limpeza", "Vendas diretas", "Conserto de máquinas"}},
	},
	CategoryHealth: {
		{"O que é EPI?", [4]string{"Equipamento de Proteção Individual", "Exame Padrão Interno", "Enfermagem Para Idosos", "Escola Particular Infantil"}},
		{"Qual o telefone do SAMU?", [4]string{"192", "190", "193", "100"}},
		{"O que é assepsia?", [4]string{"Limpeza e desinfecção", "Uma doença", "Um medicamento", "Uma cirurgia"}},
	},
}

// genericTemplates fill the exam when the specific bank is short.
var genericTemplates = []item{
	{"Qual é o principal objetivo de estudar @@?", [4]string{"Aprimoramento profissional em @@", "Apenas passar o tempo", "Decorar termos sem sentido", "Não há objetivo claro"}},
	{"No contexto de @@, o que é considerado uma 'Boa Prática'?", [4]string{"Seguir os padrões e normas da área", "Improvisar sempre", "Ignorar a segurança", "Fazer o mais rápido possível apenas"}},
	{"Qual habilidade é essencial para um profissional de @@?", [4]string{"Atenção aos detalhes e técnica", "Força física bruta", "Sorte", "Apenas rapidez"}},
	{"Como @@ impacta o mercado de trabalho atual?", [4]string{"Aumentando a demanda por especialistas", "Reduzindo salários", "Não tem impacto", "É uma área em extinção"}},
	{"Qual ferramenta é comumente associada a @@?", [4]string{"Softwares e equipamentos específicos da área", "Apenas papel e caneta", "Nenhuma ferramenta é usada", "Ferramentas de jardinagem"}},
	{"Para garantir a qualidade em @@, deve-se:", [4]string{"Revisar e seguir procedimentos", "Ignorar erros pequenos", "Não aceitar feedbacks", "Trabalhar isolado"}},
	{"Um erro comum de iniciantes em @@ é:", [4]string{"Não planejar antes de executar", "Estudar demais", "Ser muito organizado", "Perguntar dúvidas"}},
	{"A ética profissional em @@ envolve:", [4]string{"Honestidade e sigilo quando necessário", "Falar mal dos colegas", "Copiar trabalho alheio", "Chegar atrasado sempre"}},
	{"Para se manter atualizado em @@, recomenda-se:", [4]string{"Cursos contínuos e leitura da área", "Nunca mais estudar", "Apenas ver TV", "Mudar de profissão"}},
	{"Qual o primeiro passo para resolver um problema complexo em @@?", [4]string{"Analisar a causa raiz", "Entrar em pânico", "Desistir", "Culpar o computador"}},
	{"Em um projeto de @@, a comunicação deve ser:", [4]string{"Clara e objetiva", "Confusa e longa", "Inexistente", "Apenas por sinais"}},
	{"A segurança em @@ prioriza:", [4]string{"A prevenção de acidentes e erros", "A pressa", "A economia de materiais a qualquer custo", "O improviso"}},
}

// Bank returns a copy of the specific questions for a category, numbered
// from 1, in the canonical (correct-first) layout.
func Bank(c Category) []Question {
	items := banks[c]
	out := make([]Question, len(items))
	for i, it := range items {
		out[i] = it.question(i + 1)
	}
	return out
}

// TemplateCount returns the number of generic templates.
func TemplateCount() int {
	return len(genericTemplates)
}
