// Package matching scores a resume against a job description with static
// skill alias and role tables.
package matching

// Skill categories.
const (
	CategoryLanguage  = "language"
	CategoryFramework = "framework"
	CategoryDatabase  = "database"
	CategoryCloud     = "cloud"
	CategoryDevOps    = "devops"
	CategoryData      = "data"
	CategoryTool      = "tool"
	CategoryPractice  = "practice"
	CategorySoft      = "soft"
)

type skillDef struct {
	Name     string
	Category string
	Aliases  []string
}

// skillTable lists canonical skills with the spellings that map to them.
// The canonical name itself always matches.
var skillTable = []skillDef{
	// languages
	{"Go", CategoryLanguage, []string{"golang", "go lang"}},
	{"Python", CategoryLanguage, []string{"python3"}},
	{"Java", CategoryLanguage, []string{"java 8", "java 11", "java 17"}},
	{"JavaScript", CategoryLanguage, []string{"js", "ecmascript", "es6", "vanilla js"}},
	{"TypeScript", CategoryLanguage, []string{"ts"}},
	{"C++", CategoryLanguage, []string{"cpp", "c plus plus"}},
	{"C#", CategoryLanguage, []string{"csharp", "c sharp"}},
	{"Rust", CategoryLanguage, []string{"rustlang"}},
	{"Ruby", CategoryLanguage, nil},
	{"PHP", CategoryLanguage, nil},
	{"Kotlin", CategoryLanguage, nil},
	{"Swift", CategoryLanguage, nil},
	{"Scala", CategoryLanguage, nil},
	{"SQL", CategoryLanguage, []string{"t-sql", "pl/sql", "plsql"}},
	{"Bash", CategoryLanguage, []string{"shell scripting", "shell"}},
	{"HTML", CategoryLanguage, []string{"html5"}},
	{"CSS", CategoryLanguage, []string{"css3", "sass", "scss"}},
	{"R", CategoryLanguage, nil},

	// frameworks and libraries
	{"React", CategoryFramework, []string{"react.js", "reactjs"}},
	{"Angular", CategoryFramework, []string{"angularjs", "angular.js"}},
	{"Vue", CategoryFramework, []string{"vue.js", "vuejs"}},
	{"Next.js", CategoryFramework, []string{"nextjs"}},
	{"Node.js", CategoryFramework, []string{"nodejs", "node"}},
	{"Express", CategoryFramework, []string{"express.js", "expressjs"}},
	{"Django", CategoryFramework, nil},
	{"Flask", CategoryFramework, nil},
	{"FastAPI", CategoryFramework, nil},
	{"Spring", CategoryFramework, []string{"spring boot", "springboot", "spring framework"}},
	{".NET", CategoryFramework, []string{"dotnet", "asp.net", ".net core"}},
	{"Ruby on Rails", CategoryFramework, []string{"rails", "ror"}},
	{"GraphQL", CategoryFramework, nil},
	{"gRPC", CategoryFramework, []string{"grpc", "protobuf", "protocol buffers"}},
	{"REST", CategoryFramework, []string{"rest api", "restful", "rest apis", "restful apis"}},
	{"TensorFlow", CategoryFramework, nil},
	{"PyTorch", CategoryFramework, []string{"torch"}},
	{"scikit-learn", CategoryFramework, []string{"sklearn", "scikit learn"}},
	{"React Native", CategoryFramework, nil},
	{"Flutter", CategoryFramework, nil},
	{"Tailwind CSS", CategoryFramework, []string{"tailwind", "tailwindcss"}},

	// databases and messaging
	{"PostgreSQL", CategoryDatabase, []string{"postgres", "psql"}},
	{"MySQL", CategoryDatabase, []string{"mariadb"}},
	{"MongoDB", CategoryDatabase, []string{"mongo"}},
	{"Redis", CategoryDatabase, nil},
	{"Elasticsearch", CategoryDatabase, []string{"elastic search", "opensearch"}},
	{"DynamoDB", CategoryDatabase, []string{"dynamo db"}},
	{"Cassandra", CategoryDatabase, nil},
	{"SQLite", CategoryDatabase, nil},
	{"Kafka", CategoryDatabase, []string{"apache kafka"}},
	{"RabbitMQ", CategoryDatabase, []string{"amqp"}},

	// cloud
	{"AWS", CategoryCloud, []string{"amazon web services", "ec2", "s3", "lambda"}},
	{"GCP", CategoryCloud, []string{"google cloud", "google cloud platform", "bigquery"}},
	{"Azure", CategoryCloud, []string{"microsoft azure"}},
	{"Serverless", CategoryCloud, nil},

	// devops
	{"Docker", CategoryDevOps, []string{"containers", "containerization"}},
	{"Kubernetes", CategoryDevOps, []string{"k8s", "eks", "gke", "aks"}},
	{"Terraform", CategoryDevOps, []string{"hcl"}},
	{"Ansible", CategoryDevOps, nil},
	{"CI/CD", CategoryDevOps, []string{"ci cd", "cicd", "continuous integration", "continuous delivery", "continuous deployment"}},
	{"Jenkins", CategoryDevOps, nil},
	{"GitHub Actions", CategoryDevOps, []string{"gh actions"}},
	{"Linux", CategoryDevOps, []string{"unix", "ubuntu", "debian"}},
	{"Prometheus", CategoryDevOps, nil},
	{"Grafana", CategoryDevOps, nil},
	{"Helm", CategoryDevOps, nil},

	// data and ML
	{"Machine Learning", CategoryData, []string{"ml", "machine-learning"}},
	{"Deep Learning", CategoryData, []string{"neural networks"}},
	{"NLP", CategoryData, []string{"natural language processing"}},
	{"Data Analysis", CategoryData, []string{"data analytics", "analytics"}},
	{"Statistics", CategoryData, []string{"statistical analysis", "statistical modeling"}},
	{"Pandas", CategoryData, nil},
	{"NumPy", CategoryData, nil},
	{"Spark", CategoryData, []string{"apache spark", "pyspark"}},
	{"Airflow", CategoryData, []string{"apache airflow"}},
	{"ETL", CategoryData, []string{"data pipelines", "data pipeline", "elt"}},
	{"Tableau", CategoryData, nil},
	{"Power BI", CategoryData, []string{"powerbi"}},
	{"LLM", CategoryData, []string{"llms", "large language models", "generative ai", "genai"}},

	// tools
	{"Git", CategoryTool, []string{"github", "gitlab", "version control"}},
	{"Jira", CategoryTool, nil},
	{"Figma", CategoryTool, nil},
	{"Excel", CategoryTool, []string{"microsoft excel", "spreadsheets"}},
	{"LaTeX", CategoryTool, nil},

	// practices
	{"Microservices", CategoryPractice, []string{"microservice", "micro-services", "service oriented architecture", "soa"}},
	{"Distributed Systems", CategoryPractice, []string{"distributed computing"}},
	{"System Design", CategoryPractice, []string{"systems design", "software architecture"}},
	{"Agile", CategoryPractice, []string{"scrum", "kanban"}},
	{"TDD", CategoryPractice, []string{"test driven development", "test-driven development", "unit testing", "automated testing"}},
	{"Security", CategoryPractice, []string{"application security", "appsec", "owasp"}},
	{"Observability", CategoryPractice, []string{"monitoring", "logging", "tracing"}},
	{"Product Management", CategoryPractice, []string{"product strategy", "roadmapping", "product roadmap"}},
	{"UX Design", CategoryPractice, []string{"user experience", "ux", "ui/ux", "user research"}},
	{"Mobile Development", CategoryPractice, []string{"ios", "android"}},

	// soft skills
	{"Leadership", CategorySoft, []string{"led", "mentored", "mentoring", "team lead"}},
	{"Communication", CategorySoft, []string{"communication skills", "presentations", "stakeholder management"}},
	{"Collaboration", CategorySoft, []string{"cross-functional", "teamwork", "cross functional"}},
	{"Problem Solving", CategorySoft, []string{"problem-solving", "troubleshooting"}},
}

// caseSensitive holds canonical skills whose bare name is also an ordinary
// English word or letter. They only match when written exactly as the
// canonical spelling.
var caseSensitive = map[string]bool{
	"Go":      true,
	"R":       true,
	"Swift":   true,
	"Spring":  true,
	"Express": true,
	"REST":    true,
}
