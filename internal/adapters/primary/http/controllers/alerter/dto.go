package alerter

// RailwayWebhookPayload deploy platform webhook body
type RailwayWebhookPayload struct {
	Type      string                `json:"type"`
	Details   RailwayDeploymentInfo `json:"details"`
	Resource  RailwayResource       `json:"resource"`
	Severity  string                `json:"severity"`
	Timestamp string                `json:"timestamp"`
}

type RailwayDeploymentInfo struct {
	ID            string `json:"id"`
	Source        string `json:"source"`
	Status        string `json:"status"`
	Branch        string `json:"branch"`
	CommitHash    string `json:"commitHash"`
	CommitAuthor  string `json:"commitAuthor"`
	CommitMessage string `json:"commitMessage"`
}

type RailwayResource struct {
	Workspace   RailwayWorkspace   `json:"workspace"`
	Project     RailwayProject     `json:"project"`
	Environment RailwayEnvironment `json:"environment"`
	Service     RailwayService     `json:"service"`
	Deployment  RailwayDeployment  `json:"deployment"`
}

type RailwayWorkspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RailwayProject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RailwayEnvironment struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsEphemeral bool   `json:"isEphemeral"`
}

type RailwayService struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RailwayDeployment struct {
	ID string `json:"id"`
}

// GenericAlertPayload free-form alert body
type GenericAlertPayload struct {
	Message string `json:"message"`
	Source  string `json:"source,omitempty"`
}
