package inits

import "stix-ui/app/server/models"

// STIX 2.1 open vocabularies

var threatActorTypes = []models.Vocabulary{
	{Name: "activist", Description: "Highly motivated, potentially destructive supporter of a social or political cause."},
	{Name: "competitor", Description: "An organization that competes in the same economic marketplace."},
	{Name: "crime-syndicate", Description: "An enterprise organized to conduct significant, large-scale criminal activity for profit."},
	{Name: "criminal", Description: "Individual who commits computer crimes, often for personal financial gain."},
	{Name: "hacker", Description: "An individual that tends to break into networks for the thrill or the challenge of doing so."},
	{Name: "insider-accidental", Description: "A non-hostile insider who unintentionally exposes the organization to harm."},
	{Name: "insider-disgruntled", Description: "Current or former insiders who seek revengeful and harmful retaliation."},
	{Name: "nation-state", Description: "Entities who work for the government or military of a nation state."},
	{Name: "sensationalist", Description: "Seeks to cause embarrassment and brand damage by exposing sensitive information."},
	{Name: "spy", Description: "Secretly collects sensitive information for use, dissemination, or sale."},
	{Name: "terrorist", Description: "Uses extreme violence to advance a social or political agenda."},
	{Name: "unknown", Description: "There is not enough information available to determine the type."},
}

var threatActorRoles = []models.Vocabulary{
	{Name: "agent", Description: "Executes attacks either on behalf of themselves or at the direction of someone else."},
	{Name: "director", Description: "The threat actor who directs the activities, goals, and objectives of the malicious activities."},
	{Name: "independent", Description: "A threat actor acting by themselves."},
	{Name: "infrastructure-architect", Description: "Someone who designs the battle space."},
	{Name: "infrastructure-operator", Description: "The threat actor who provides and supports the attack infrastructure."},
	{Name: "malware-author", Description: "The threat actor who authors malware or other malicious tools."},
	{Name: "sponsor", Description: "The threat actor who funds the malicious activities."},
}

var threatActorSophistications = []models.Vocabulary{
	{Name: "none", Description: "Can carry out random acts of disruption or destruction by running tools they do not understand."},
	{Name: "minimal", Description: "Can minimally use existing and frequently well known and easy-to-find techniques and programs or scripts."},
	{Name: "intermediate", Description: "Can proficiently use existing attack frameworks and toolkits."},
	{Name: "advanced", Description: "Can develop their own tools or scripts from publicly known vulnerabilities."},
	{Name: "expert", Description: "Can focus on the discovery and use of unknown malicious code."},
	{Name: "innovator", Description: "Typically, criminal or state actors who are organized, highly technical, proficient, well-funded."},
	{Name: "strategic", Description: "State actors who create vulnerabilities through an active program to influence commercial products."},
}

var attackResourceLevels = []models.Vocabulary{
	{Name: "individual", Description: "Resources limited to the average individual."},
	{Name: "club", Description: "Members interact on a social and volunteer basis, often with little personal interest in the specific target."},
	{Name: "contest", Description: "A short-lived and perhaps anonymous interaction that concludes when the participants have achieved a single goal."},
	{Name: "team", Description: "A formally organized group with a leader, typically motivated by a specific goal."},
	{Name: "organization", Description: "Larger and better resourced than a team; typically a company or crime syndicate."},
	{Name: "government", Description: "Controls public assets and functions within a jurisdiction; very well resourced."},
}

var attackMotivations = []models.Vocabulary{
	{Name: "accidental", Description: "A non-hostile actor whose benevolent or harmless intent inadvertently causes harm."},
	{Name: "coercion", Description: "Being forced to act on someone else's behalf."},
	{Name: "dominance", Description: "A desire to assert superiority over someone or something else."},
	{Name: "ideology", Description: "A passion to express a set of ideas, beliefs, and values."},
	{Name: "notoriety", Description: "Seeking prestige or to become well known through some activity."},
	{Name: "organizational-gain", Description: "Seeking advantage over a competing organization."},
	{Name: "personal-gain", Description: "The desire to improve one's own financial status."},
	{Name: "personal-satisfaction", Description: "A desire to satisfy a strictly personal goal."},
	{Name: "revenge", Description: "A desire to avenge perceived wrongs through harmful actions."},
	{Name: "unpredictable", Description: "Acting without identifiable reason or purpose."},
}

var identityClasses = []models.Vocabulary{
	{Name: "individual", Description: "A single person."},
	{Name: "group", Description: "An informal collection of people, without formal governance."},
	{Name: "system", Description: "A computer system, such as a SIEM."},
	{Name: "organization", Description: "A formal organization of people, with governance."},
	{Name: "class", Description: "A class of entities, such as all hospitals."},
	{Name: "unknown", Description: "It is unknown whether the classification is an individual, group, system, organization, or class."},
}
